package mock

import "github.com/fwojciec/pagesnap"

var _ pagesnap.KeyDeriver = (*KeyDeriver)(nil)

// KeyDeriver is a mock implementation of pagesnap.KeyDeriver.
type KeyDeriver struct {
	DeriveFn func(url string, config pagesnap.RequestConfig) string
}

func (k *KeyDeriver) Derive(url string, config pagesnap.RequestConfig) string {
	return k.DeriveFn(url, config)
}
