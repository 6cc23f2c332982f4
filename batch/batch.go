package batch

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/riftline/league_anm_browser/anm"
	"github.com/riftline/league_anm_browser/status"
)

// ProgressFunc is called after each file finishes, successful or not.
type ProgressFunc func(done, total int, name string)

// Entry is one animation of a loaded library. Err is set instead of
// Animation when the file failed to decode; one broken file must not
// take the rest of the library down.
type Entry struct {
	Name      string
	Path      string
	Animation *anm.Animation
	Err       error
}

type Library struct {
	Entries []*Entry
}

func (l *Library) Get(name string) *Entry {
	for _, e := range l.Entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Scan lists the animation files of a directory, sorted by name.
func Scan(dir string) ([]string, error) {
	infos, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read directory %q", dir)
	}

	var files []string
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(info.Name()), ".anm") {
			files = append(files, info.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadAll decodes every animation file of a directory across a worker
// pool. Entries keep directory order regardless of which worker finished
// first.
func LoadAll(dir string, progress ProgressFunc) (*Library, error) {
	files, err := Scan(dir)
	if err != nil {
		return nil, err
	}

	lib := &Library{Entries: make([]*Entry, len(files))}

	jobs := make(chan int)
	var done sync.Mutex
	doneCount := 0

	var wg sync.WaitGroup
	for w := 0; w < runtime.NumCPU(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				name := files[i]
				path := filepath.Join(dir, name)
				entry := &Entry{Name: name, Path: path}

				if data, err := ioutil.ReadFile(path); err != nil {
					entry.Err = errors.Wrapf(err, "Failed to read %q", path)
				} else if a, err := anm.Decode(data); err != nil {
					entry.Err = errors.Wrapf(err, "Failed to decode %q", path)
				} else {
					entry.Animation = a
				}
				lib.Entries[i] = entry

				done.Lock()
				doneCount++
				current := doneCount
				done.Unlock()

				status.FileProgress(float32(current)/float32(len(files)), name,
					"Loaded %d of %d animations", current, len(files))
				if entry.Err != nil {
					status.Error("%v", entry.Err)
				}
				if progress != nil {
					progress(current, len(files), name)
				}
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return lib, nil
}

// ExportAll re-encodes every decoded animation of the library into the
// quantized-palette container under outDir. Files are published
// atomically by writing to a temp file and renaming.
func ExportAll(lib *Library, outDir string, progress ProgressFunc) error {
	if err := os.MkdirAll(outDir, 0777); err != nil {
		return errors.Wrapf(err, "Failed to create %q", outDir)
	}

	exported := 0
	for _, entry := range lib.Entries {
		if entry.Animation == nil {
			continue
		}

		data, err := anm.WriteV5(entry.Animation)
		if err != nil {
			return errors.Wrapf(err, "Failed to encode %q", entry.Name)
		}

		path := filepath.Join(outDir, entry.Name)
		if err := writeAtomic(path, data); err != nil {
			return err
		}

		exported++
		status.FileProgress(float32(exported)/float32(len(lib.Entries)), entry.Name,
			"Exported %d of %d animations", exported, len(lib.Entries))
		if progress != nil {
			progress(exported, len(lib.Entries), entry.Name)
		}
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := ioutil.TempFile(filepath.Dir(path), ".anm-*")
	if err != nil {
		return errors.Wrapf(err, "Failed to create temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "Failed to write %q", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "Failed to close %q", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "Failed to publish %q", path)
	}
	return nil
}
