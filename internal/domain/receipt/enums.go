package receipt

// Status represents the lifecycle status of a receipt
type Status string

const (
	StatusDraft     Status = "rascunho"  // created, not yet signed
	StatusSigned    Status = "assinado"  // provider signature attached
	StatusCancelled Status = "cancelado" // voided
)

// IsValid checks if the Status is a valid value
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSigned, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusCancelled
}

// CanTransitionTo reports whether the state machine allows s -> target
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusSigned || target == StatusCancelled
	case StatusSigned:
		return target == StatusCancelled
	}
	return false
}

// DisplayName returns the pt-BR label for the status
func (s Status) DisplayName() string {
	switch s {
	case StatusDraft:
		return "Rascunho"
	case StatusSigned:
		return "Assinado"
	case StatusCancelled:
		return "Cancelado"
	default:
		return string(s)
	}
}

// SignatureType represents how the signature artifact was captured
type SignatureType string

const (
	SignatureTypeDrawn    SignatureType = "desenho"  // drawn on a canvas, artifact is an image data URL
	SignatureTypeTyped    SignatureType = "digitado" // typed name rendered in a script font
	SignatureTypeUploaded SignatureType = "upload"   // uploaded image
)

// DefaultSignatureType is used when the caller does not choose one
const DefaultSignatureType = SignatureTypeDrawn

// IsValid checks if the SignatureType is a valid value
func (t SignatureType) IsValid() bool {
	switch t {
	case SignatureTypeDrawn, SignatureTypeTyped, SignatureTypeUploaded:
		return true
	}
	return false
}

// IsImage returns true when the artifact is an image rather than text
func (t SignatureType) IsImage() bool {
	return t == SignatureTypeDrawn || t == SignatureTypeUploaded
}

// String returns the string representation of SignatureType
func (t SignatureType) String() string {
	return string(t)
}
