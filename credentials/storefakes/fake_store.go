package storefakes

import (
	"sync"

	"github.com/openjobs/go-jobboard/credentials"
)

var _ credentials.Store = (*FakeStore)(nil)

// FakeStore is an in-memory credentials.Store for tests.
type FakeStore struct {
	cred *credentials.Credential
	lock sync.RWMutex

	SetCalls   int
	ClearCalls int
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (fs *FakeStore) Get() (*credentials.Credential, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	if fs.cred == nil {
		return nil, nil
	}
	copied := *fs.cred
	return &copied, nil
}

func (fs *FakeStore) Set(cred credentials.Credential) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.SetCalls++
	fs.cred = &cred
	return nil
}

func (fs *FakeStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.ClearCalls++
	fs.cred = nil
	return nil
}
