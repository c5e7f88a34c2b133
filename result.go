package paysheet

// InitResult is the terminal outcome of one initialization attempt
// Variants: InitSuccess, InitFailure
type InitResult interface {
	isInitResult()
}

// InitSuccess carries the assembled session data
type InitSuccess struct {
	Data InitData
}

// InitFailure carries the reason the attempt failed, always an *InitError
type InitFailure struct {
	Err error
}

func (InitSuccess) isInitResult() {}
func (InitFailure) isInitResult() {}

// Code returns the failure's error code, or "" if the reason carries none
func (f InitFailure) Code() string {
	if e := AsInitError(f.Err); e != nil {
		return e.Code
	}
	return ""
}
