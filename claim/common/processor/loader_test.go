package processor

import (
	"errors"

	"github.com/piprate/json-gold/ld"
)

type failingLoader struct{}

func (failingLoader) LoadDocument(string) (*ld.RemoteDocument, error) {
	return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, errors.New("offline"))
}
