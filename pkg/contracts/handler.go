package contracts

import "github.com/julienschmidt/httprouter"

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Stopper is a background component the application stops on shutdown.
type Stopper interface {
	Stop()
}
