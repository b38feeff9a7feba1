package live

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"ccswitch/config/models"
	"ccswitch/config/storage"
	"ccswitch/internal/apperr"
)

// Adapter translates between a provider's settings_config and one app's live files
type Adapter interface {
	// App returns the app type served by this adapter
	App() models.AppType
	// ConfigDir is the directory whose presence marks the app as installed
	ConfigDir() string
	// Files lists the live files owned by the adapter
	Files() []string
	// HasLive reports whether the live files hold anything worth capturing
	HasLive() bool
	// Read returns the live files in settings_config shape, unmodified
	Read() (map[string]any, error)
	// Write makes p live. common is the app's common config snippet; it is
	// merged in unless p opted out.
	Write(p models.Provider, common string) error
	// Capture reads the live files back into p's settings_config shape,
	// with the values shared with common removed.
	Capture(p models.Provider, common string) (map[string]any, error)
	// LegacyFiles lists per-provider files written by older versions
	LegacyFiles(p models.Provider) []string
}

// CommonExtractor is implemented by adapters able to derive a common config
// snippet from the live files
type CommonExtractor interface {
	ExtractCommon() (string, error)
}

// Registry maps app types to their adapters
type Registry struct {
	adapters map[models.AppType]Adapter
}

// NewRegistry returns a registry holding the built-in adapters for paths
func NewRegistry(paths Paths) *Registry {
	r := &Registry{adapters: make(map[models.AppType]Adapter)}
	backups := storage.NewBackupManager(storage.DefaultBackupRetention)
	r.Register(&ClaudeAdapter{paths: paths})
	r.Register(&CodexAdapter{paths: paths, backups: backups})
	r.Register(&GeminiAdapter{paths: paths})
	return r
}

// Register adds or replaces the adapter for its app type
func (r *Registry) Register(a Adapter) {
	r.adapters[a.App()] = a
}

// Get returns the adapter for app
func (r *Registry) Get(app models.AppType) (Adapter, error) {
	a, ok := r.adapters[app]
	if !ok {
		return nil, apperr.AppNotFound(string(app))
	}
	return a, nil
}

// List returns the registered app types, sorted
func (r *Registry) List() []models.AppType {
	list := make([]models.AppType, 0, len(r.adapters))
	for app := range r.adapters {
		list = append(list, app)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

// Snapshot captures the current bytes of every live file of app
func (r *Registry) Snapshot(app models.AppType) (*Snapshot, error) {
	a, err := r.Get(app)
	if err != nil {
		return nil, err
	}
	return Capture(app, a.Files())
}

var unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFileName makes a provider name usable as part of a file name
func SanitizeFileName(name string) string {
	return strings.ToLower(unsafeFileChars.ReplaceAllString(name, "-"))
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func missingLive(app models.AppType, path string) error {
	return apperr.NotFound(string(app)+".live.missing",
		fmt.Sprintf("%s 配置文件不存在: %s", app, path),
		fmt.Sprintf("%s live config file not found: %s", app, path))
}

// objectAt returns m[key] when it is an object
func objectAt(m map[string]any, key string) (map[string]any, bool) {
	v, ok := m[key].(map[string]any)
	return v, ok
}
