package device

// Device is a board running the distance exercise, real or simulated.
type Device interface {
	Connect() error
	Close() error
	Readings() <-chan Reading
	Send(cmd byte) error
	IsConnected() bool
}

var _ Device = (*Serial)(nil)

var _ Device = (*Mock)(nil)
