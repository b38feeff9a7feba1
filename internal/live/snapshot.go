package live

import (
	"errors"
	"io/fs"
	"os"

	"ccswitch/config/models"
	"ccswitch/config/storage"
	"ccswitch/internal/apperr"
)

type fileState struct {
	path   string
	data   []byte
	perm   fs.FileMode
	exists bool
}

// Snapshot holds the exact bytes of an app's live files at one point in time.
// A file that did not exist is part of the state: Restore deletes it.
type Snapshot struct {
	App   models.AppType
	files []fileState
}

// Capture records the current state of files
func Capture(app models.AppType, files []string) (*Snapshot, error) {
	s := &Snapshot{App: app}
	for _, path := range files {
		st := fileState{path: path, perm: 0o600}
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			st.data = data
			st.exists = true
			if info, statErr := os.Stat(path); statErr == nil {
				st.perm = info.Mode().Perm()
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, apperr.IO(path, err)
		}
		s.files = append(s.files, st)
	}
	return s, nil
}

// Restore puts every captured file back the way it was. All files are
// attempted; the errors are joined.
func (s *Snapshot) Restore() error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, st := range s.files {
		var err error
		if st.exists {
			err = storage.AtomicWrite(st.path, st.data, st.perm)
		} else {
			err = storage.DeleteFile(st.path)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Existed reports whether path was present when the snapshot was taken
func (s *Snapshot) Existed(path string) bool {
	for _, st := range s.files {
		if st.path == path {
			return st.exists
		}
	}
	return false
}
