package driver

// Observer is the narrow seam the reactor calls on terminal
// transmissions so operability (logging, metrics) stays out of the pure
// state machine (SPEC_FULL.md §7). metrics.Observer is the production
// implementation; NoopObserver is the zero value.
type Observer interface {
	OnSend(Transmission)
	OnIgnored(Transmission)
	OnRecvOk(Transmission)
	OnRecvErr(Transmission, BadNews)
}

type noopObserver struct{}

// NoopObserver discards every notification. It is the Driver's default
// Observer so callers that don't care about metrics pay nothing for it.
func NoopObserver() Observer { return noopObserver{} }

func (noopObserver) OnSend(Transmission)             {}
func (noopObserver) OnIgnored(Transmission)          {}
func (noopObserver) OnRecvOk(Transmission)            {}
func (noopObserver) OnRecvErr(Transmission, BadNews) {}
