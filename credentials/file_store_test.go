package credentials_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openjobs/go-jobboard/credentials"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := credentials.NewFileStore(t.TempDir())
	require.NoError(t, err)

	cred, err := store.Get()
	require.NoError(t, err)
	require.Nil(t, cred, "empty store should report no credential")

	require.NoError(t, store.Set(credentials.Credential{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
	}))

	cred, err = store.Get()
	require.NoError(t, err)
	require.NotNil(t, cred)
	require.Equal(t, "access-1", cred.AccessToken)
	require.Equal(t, "refresh-1", cred.RefreshToken)

	require.NoError(t, store.Clear())
	cred, err = store.Get()
	require.NoError(t, err)
	require.Nil(t, cred)

	// Clearing an already empty store is fine
	require.NoError(t, store.Clear())
}

func TestFileStoreSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	store, err := credentials.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(credentials.Credential{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
	}))

	// A new store on the same folder sees the same credential, like a
	// page reload reading browser storage.
	reopened, err := credentials.NewFileStore(dir)
	require.NoError(t, err)
	cred, err := reopened.Get()
	require.NoError(t, err)
	require.NotNil(t, cred)
	require.Equal(t, "access-token", cred.AccessToken)
	require.Equal(t, "refresh-token", cred.RefreshToken)
}

func TestFileStoreAtomicPair(t *testing.T) {
	store, err := credentials.NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set(credentials.Credential{
		AccessToken:  "access-0",
		RefreshToken: "refresh-0",
	}))

	const writes = 50
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= writes; i++ {
			_ = store.Set(credentials.Credential{
				AccessToken:  fmt.Sprintf("access-%d", i),
				RefreshToken: fmt.Sprintf("refresh-%d", i),
			})
		}
	}()

	// A concurrent reader must always observe a matching pair, never an
	// access token from one write alongside a refresh token from another.
	for i := 0; i < writes; i++ {
		cred, err := store.Get()
		require.NoError(t, err)
		require.NotNil(t, cred)
		accessGen := cred.AccessToken[len("access-"):]
		refreshGen := cred.RefreshToken[len("refresh-"):]
		require.Equal(t, accessGen, refreshGen, "torn credential pair observed")
	}
	wg.Wait()
}
