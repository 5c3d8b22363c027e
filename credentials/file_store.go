package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

const credentialsFileName = "credentials.json"

// FileStore persists the Credential as a JSON file so a session survives
// process restarts. The pair is written to a temporary file and renamed into
// place, so a reader never observes half of an update.
type FileStore struct {
	path string
	lock sync.RWMutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dataFolder, creating the folder
// if needed.
func NewFileStore(dataFolder string) (*FileStore, error) {
	if err := os.MkdirAll(dataFolder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] os.MkdirAll")
	}
	return &FileStore{path: filepath.Join(dataFolder, credentialsFileName)}, nil
}

func (fs *FileStore) Get() (*Credential, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileStore.Get] os.ReadFile")
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, errors.Wrap(err, "[FileStore.Get] json.Unmarshal")
	}
	if cred.AccessToken == "" && cred.RefreshToken == "" {
		return nil, nil
	}
	return &cred, nil
}

func (fs *FileStore) Set(cred Credential) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	data, err := json.Marshal(cred)
	if err != nil {
		return errors.Wrap(err, "[FileStore.Set] json.Marshal")
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStore.Set] os.WriteFile")
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return errors.Wrap(err, "[FileStore.Set] os.Rename")
	}
	return nil
}

func (fs *FileStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Clear] os.Remove")
	}
	return nil
}
