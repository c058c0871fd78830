package keystore

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-keystore/pkg/address"
	"golang.org/x/sync/errgroup"
)

const (
	dirPerm  = 0700
	filePerm = 0600
)

// keyFileName returns the name of the key file of the given address created
// at t: UTC--<ISO8601 with nanoseconds and zone>--<address>.
func keyFileName(addr address.Address, t time.Time) string {
	return fmt.Sprintf("UTC--%s--%s", toISO8601(t), addr.LowerHex())
}

func toISO8601(t time.Time) string {
	var tz string
	_, offset := t.Zone()
	if offset == 0 {
		tz = "Z"
	} else {
		sign := '+'
		if offset < 0 {
			sign = '-'
			offset = -offset
		}
		tz = fmt.Sprintf("%c%02d%02d", sign, offset/3600, (offset%3600)/60)
	}
	return fmt.Sprintf("%04d-%02d-%02dT%02d-%02d-%02d.%09d%s",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), tz)
}

// writeKeyFile atomically replaces file with content: the content is
// written to a hidden temporary file of the same directory that is then
// renamed.
func writeKeyFile(file string, content []byte) error {
	name, err := writeTemporaryKeyFile(file, content)
	if err != nil {
		return err
	}
	if err := os.Rename(name, file); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

func writeTemporaryKeyFile(file string, content []byte) (string, error) {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(file)+".tmp")
	if err != nil {
		return "", err
	}
	if err := f.Chmod(filePerm); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

type keyFile struct {
	name string
	key  *Key
}

// readKeyFiles decodes every key file of dir, sorted by file name. Hidden
// files, directories, editor backups and files that are not valid key files
// are skipped.
func readKeyFiles(dir string) ([]keyFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || skipKeyFile(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	keys := make([]*Key, len(names))
	eg := &errgroup.Group{}
	eg.SetLimit(runtime.NumCPU())
	for i := range names {
		i := i
		eg.Go(func() error {
			path := filepath.Join(dir, names[i])
			buf, err := os.ReadFile(path)
			if err != nil {
				log.WithError(err).WithField("file", path).Debug("skipping unreadable file")
				return nil
			}
			key, err := DecodeKey(buf)
			if err != nil {
				log.WithError(err).WithField("file", path).Debug("skipping invalid key file")
				return nil
			}
			keys[i] = key
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	files := make([]keyFile, 0, len(names))
	for i, key := range keys {
		if key != nil {
			files = append(files, keyFile{names[i], key})
		}
	}
	return files, nil
}

func skipKeyFile(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")
}
