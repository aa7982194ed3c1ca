package client

// OperationSource names the user action an API call belongs to.
type OperationSource int

const (
	SourceLoad OperationSource = iota
	SourceCreate
	SourceUpdate
	SourceDelete
	SourceAuthVerify
)

// Sources lists every OperationSource in declaration order.
var Sources = [...]OperationSource{SourceLoad, SourceCreate, SourceUpdate, SourceDelete, SourceAuthVerify}

func (s OperationSource) String() string {
	switch s {
	case SourceLoad:
		return "load"
	case SourceCreate:
		return "create"
	case SourceUpdate:
		return "update"
	case SourceDelete:
		return "delete"
	case SourceAuthVerify:
		return "authVerify"
	default:
		return "unknown"
	}
}
