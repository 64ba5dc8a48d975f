package backup

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const maxBackupSize = 64 << 20 // 64 MB

// FilePrefix starts every default backup file name.
const FilePrefix = "waniala-backup-"

// File is a backup found on disk.
type File struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// DefaultName returns the backup file name for a backup taken at t.
func DefaultName(t time.Time) string {
	return FilePrefix + t.Format("2006-01-02-150405") + ".json"
}

// ScanDir lists the backup files in dir, newest first. A missing
// directory yields no files.
func ScanDir(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, FilePrefix) || filepath.Ext(name) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, File{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Name > files[j].Name
	})
	return files, nil
}
