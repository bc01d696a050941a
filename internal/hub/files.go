package hub

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"invoiceterm/internal/model"
)

// FileFromPath stats path and builds the candidate the controller validates.
// ContentType is what the OS would declare for the extension, the way a
// browser fills File.type.
func FileFromPath(path string) (model.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return model.File{}, fmt.Errorf("%s is a directory", path)
	}
	return model.File{
		Name:        info.Name(),
		ContentType: declaredType(info.Name()),
		Path:        path,
		Size:        info.Size(),
	}, nil
}

// FilesFromPaths converts every path it can; the first error is returned
// alongside whatever was converted before it.
func FilesFromPaths(paths []string) ([]model.File, error) {
	files := make([]model.File, 0, len(paths))
	for _, p := range paths {
		f, err := FileFromPath(p)
		if err != nil {
			return files, err
		}
		files = append(files, f)
	}
	return files, nil
}

func declaredType(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	// Go's builtin table has no entry for CSV and /etc/mime.types may be absent.
	if strings.EqualFold(ext, ".csv") {
		return defaultCSVType
	}
	return ""
}
