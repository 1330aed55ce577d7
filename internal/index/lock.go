package index

import (
	"fmt"
	"os"
)

// rebuildLock serializes rebuilds of one database file across processes.
type rebuildLock struct {
	file *os.File
}

// acquireLock takes <dbPath>.lock without blocking. An empty dbPath (an
// in-memory database) needs no lock.
func acquireLock(dbPath string) (*rebuildLock, error) {
	if dbPath == "" {
		return &rebuildLock{}, nil
	}

	f, err := os.OpenFile(dbPath+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open index lock: %w", err)
	}
	if err := lockFileExclusiveNonBlocking(f); err != nil {
		f.Close()
		if isWouldBlockError(err) {
			return nil, ErrIndexLocked
		}
		return nil, fmt.Errorf("failed to acquire index lock: %w", err)
	}
	return &rebuildLock{file: f}, nil
}

func (l *rebuildLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := unlockFile(l.file)
	closeErr := l.file.Close()
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
