// --- START OF NEW FILE pkg/transformer/archive/archive.go ---
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/stackvity/code-transformer/pkg/transformer/encoding"
)

// DefaultMaxFileSize bounds the size of an entry whose text is loaded.
const DefaultMaxFileSize int64 = 10 << 20

const maxRunDirAttempts = 1000

var (
	// ErrUnsafePath indicates an entry path that would escape its target directory.
	ErrUnsafePath = errors.New("path escapes target directory")
	// ErrEntryTooLarge indicates an entry above the configured size limit.
	ErrEntryTooLarge = errors.New("archive entry too large")
)

// File is one regular file extracted from an archive.
type File struct {
	// Path is the absolute location of the extracted file.
	Path string
	// RelPath is the slash-separated path inside the archive.
	RelPath string
	// Ext is the file extension including the dot, as found in the name.
	Ext string
	// Content holds the UTF-8 text, or nil for binary, undecodable or
	// oversized files.
	Content *string
}

// OutputFile is one file to persist with WriteFiles.
type OutputFile struct {
	RelPath string
	Code    string
}

// Extractor unpacks zip archives.
type Extractor struct {
	Decoder     encoding.Decoder
	MaxFileSize int64
}

// NewExtractor returns an Extractor with a charset-detecting decoder.
func NewExtractor(defaultEncoding string) *Extractor {
	return &Extractor{Decoder: encoding.NewDecoder(defaultEncoding), MaxFileSize: DefaultMaxFileSize}
}

// Extract unpacks archivePath using a default Extractor.
func Extract(archivePath, destDir string) ([]File, error) {
	return NewExtractor("").Extract(archivePath, destDir)
}

// Extract unpacks every regular file of archivePath below destDir and
// returns them sorted by RelPath. Entries that would land outside destDir
// abort the extraction with ErrUnsafePath. Symlinks and other special
// entries are ignored.
func (e *Extractor) Extract(archivePath, destDir string) ([]File, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", destDir, err)
	}

	limit := e.MaxFileSize
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}

	var files []File
	for _, entry := range r.File {
		target, err := SafeJoin(destDir, entry.Name)
		if err != nil {
			return nil, err
		}
		mode := entry.Mode()
		if mode.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, fmt.Errorf("create %s: %w", target, err)
			}
			continue
		}
		if !mode.IsRegular() {
			continue
		}

		data, err := extractEntry(entry, target, limit)
		if err != nil && !errors.Is(err, ErrEntryTooLarge) {
			return nil, err
		}

		file := File{
			Path:    target,
			RelPath: path.Clean(entry.Name),
			Ext:     filepath.Ext(entry.Name),
		}
		if err == nil && e.Decoder != nil {
			if text, decodeErr := e.Decoder.DecodeText(data); decodeErr == nil {
				file.Content = &text
			}
		}
		files = append(files, file)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// extractEntry writes entry to target and returns its bytes when the entry
// is within limit. Oversized entries are still written but their bytes are
// not returned.
func extractEntry(entry *zip.File, target string, limit int64) ([]byte, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Dir(target), err)
	}
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", target, err)
	}
	defer out.Close()

	if entry.UncompressedSize64 > uint64(limit) {
		if _, err := io.Copy(out, rc); err != nil {
			return nil, fmt.Errorf("write %s: %w", target, err)
		}
		return nil, ErrEntryTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", entry.Name, err)
	}
	if _, err := out.Write(data); err != nil {
		return nil, fmt.Errorf("write %s: %w", target, err)
	}
	if int64(len(data)) > limit {
		if _, err := io.Copy(out, rc); err != nil {
			return nil, fmt.Errorf("write %s: %w", target, err)
		}
		return nil, ErrEntryTooLarge
	}
	return data, nil
}

// SafeJoin joins a slash-separated relative name onto dir, rejecting
// absolute names and names that climb out of dir.
func SafeJoin(dir, name string) (string, error) {
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return filepath.Join(dir, local), nil
}

// WriteFiles persists files below outDir, creating parent directories.
func WriteFiles(outDir string, files []OutputFile) error {
	for _, f := range files {
		target, err := SafeJoin(outDir, f.RelPath)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, []byte(f.Code), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
	}
	return nil
}

// Zip compresses the regular files below dir into zipPath, storing
// slash-separated paths relative to dir. The archive is written to a
// temporary file first and renamed into place.
func Zip(dir, zipPath string) (err error) {
	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(zipPath), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(zipPath), ".zip-*")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	absZip, _ := filepath.Abs(zipPath)
	absTmp, _ := filepath.Abs(tmp.Name())
	zw := zip.NewWriter(tmp)
	walkErr := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if abs, _ := filepath.Abs(p); abs == absZip || abs == absTmp {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		return addFile(zw, p, filepath.ToSlash(rel))
	})
	if walkErr != nil {
		return fmt.Errorf("zip %s: %w", dir, walkErr)
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	if err = os.Rename(tmp.Name(), zipPath); err != nil {
		return fmt.Errorf("rename archive: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate
	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// RunDir is the working area of one archive transformation run.
type RunDir struct {
	Root        string
	Source      string
	Transformed string
	ArchivePath string
}

// NewRunDir creates run_<unix millis> below root with source/ and
// transformed/ subdirectories. The output archive path is
// transformed_<unix millis>.zip inside the run directory. When the directory
// already exists a _1, _2, ... suffix is added so concurrent runs never share
// a working area.
func NewRunDir(root string, now time.Time) (RunDir, error) {
	stamp := strconv.FormatInt(now.UnixMilli(), 10)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return RunDir{}, fmt.Errorf("create %s: %w", root, err)
	}

	var runRoot string
	for i := 0; ; i++ {
		name := "run_" + stamp
		if i > 0 {
			name = fmt.Sprintf("run_%s_%d", stamp, i)
		}
		runRoot = filepath.Join(root, name)
		err := os.Mkdir(runRoot, 0o755)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) || i >= maxRunDirAttempts {
			return RunDir{}, fmt.Errorf("create %s: %w", runRoot, err)
		}
	}

	rd := RunDir{
		Root:        runRoot,
		Source:      filepath.Join(runRoot, "source"),
		Transformed: filepath.Join(runRoot, "transformed"),
		ArchivePath: filepath.Join(runRoot, "transformed_"+stamp+".zip"),
	}
	for _, dir := range []string{rd.Source, rd.Transformed} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			return RunDir{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return rd, nil
}

// --- END OF NEW FILE pkg/transformer/archive/archive.go ---
