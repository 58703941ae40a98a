package outbound

// TaskDispatcher schedules work onto the shared worker pool. Satisfied by
// *ants.Pool.
type TaskDispatcher interface {
	Submit(task func()) error
}
