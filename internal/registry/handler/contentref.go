package handler

import (
	"fmt"

	"github.com/ipfs/go-cid"

	dErrors "chainpass/pkg/domain-errors"
)

// ValidateContentRef checks that a content reference is a well-formed CID.
// Only the shape is validated; the referenced document is never resolved here.
func ValidateContentRef(ref string) error {
	if _, err := cid.Decode(ref); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("content_ref is not a valid CID: %v", err))
	}
	return nil
}
