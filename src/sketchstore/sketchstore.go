// Package sketchstore keeps the local cache of reference sketch collections and pulls
// collection archives from the public bucket.
package sketchstore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mholt/archiver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultBucket hosts the sketch archives
const DefaultBucket = "https://storage.googleapis.com/sketchy-sketch"

// Collections are the sketch collections available for download
var Collections = []string{"kpneumoniae", "saureus", "mtuberculosis"}

// DefaultPath is $SKETCHY_PATH, or ~/.sketchy
func DefaultPath() string {
	if path := os.Getenv("SKETCHY_PATH"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sketchy"
	}
	return filepath.Join(home, ".sketchy")
}

// Sketch is a cached collection file named <name>_<kmer>_<size>.msh
type Sketch struct {
	Name       string
	KmerSize   int
	SketchSize int
	Path       string
}

// ID is the file name without extension, as used to select a sketch
func (s Sketch) ID() string {
	return fmt.Sprintf("%s_%d_%d", s.Name, s.KmerSize, s.SketchSize)
}

// ParseSketchName splits a sketch file name into its parts
func ParseSketchName(path string) (Sketch, error) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".msh") {
		return Sketch{}, fmt.Errorf("%s is not a sketch file", base)
	}
	parts := strings.Split(strings.TrimSuffix(base, ".msh"), "_")
	if len(parts) < 3 {
		return Sketch{}, fmt.Errorf("sketch name %s is not <name>_<kmer>_<size>.msh", base)
	}
	n := len(parts)
	kmer, err := strconv.Atoi(parts[n-2])
	if err != nil {
		return Sketch{}, fmt.Errorf("bad k-mer size in sketch name %s", base)
	}
	size, err := strconv.Atoi(parts[n-1])
	if err != nil {
		return Sketch{}, fmt.Errorf("bad sketch size in sketch name %s", base)
	}
	return Sketch{Name: strings.Join(parts[:n-2], "_"), KmerSize: kmer, SketchSize: size, Path: path}, nil
}

// List returns the sketches cached in dir; files that do not follow the naming scheme are skipped
func List(dir string) ([]Sketch, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.msh"))
	if err != nil {
		return nil, err
	}
	sketches := []Sketch{}
	for _, path := range paths {
		s, err := ParseSketchName(path)
		if err != nil {
			zap.S().Debugf("skipping %s: %v", path, err)
			continue
		}
		sketches = append(sketches, s)
	}
	sort.Slice(sketches, func(i, j int) bool { return sketches[i].ID() < sketches[j].ID() })
	return sketches, nil
}

// Store downloads collection archives into a local directory
type Store struct {
	Dir       string
	BucketURL string
	Full      bool              // full collections instead of the .min archives
	Checksums map[string]string // archive file name -> md5, optional
	Client    *http.Client
}

// NewStore returns a store for dir pulling from the default bucket
func NewStore(dir string) *Store {
	return &Store{Dir: dir, BucketURL: DefaultBucket, Client: http.DefaultClient}
}

// ArchiveName is the archive file of a collection
func (s *Store) ArchiveName(name string) string {
	if s.Full {
		return name + ".tar.gz"
	}
	return name + ".min.tar.gz"
}

// Pull downloads and unpacks collections concurrently; all collections when none are named
func (s *Store) Pull(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		names = Collections
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("can't create sketch directory %s: %w", s.Dir, err)
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		g.Go(func() error {
			return s.pull(ctx, name)
		})
	}
	return g.Wait()
}

func (s *Store) pull(ctx context.Context, name string) error {
	archive := s.ArchiveName(name)
	dest := filepath.Join(s.Dir, archive)
	url := strings.TrimSuffix(s.BucketURL, "/") + "/" + archive
	zap.S().Infof("downloading %s", url)
	if err := s.download(ctx, url, dest); err != nil {
		os.Remove(dest)
		return fmt.Errorf("could not download %s: %w", archive, err)
	}
	defer os.Remove(dest)
	if err := s.verify(archive, dest); err != nil {
		return err
	}
	tgz := archiver.NewTarGz()
	tgz.OverwriteExisting = true
	if err := tgz.Unarchive(dest, s.Dir); err != nil {
		return fmt.Errorf("could not unpack %s: %w", archive, err)
	}
	zap.S().Infof("unpacked %s into %s", archive, s.Dir)
	return nil
}

func (s *Store) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bucket responded %s", resp.Status)
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (s *Store) verify(archive, path string) error {
	want, ok := s.Checksums[archive]
	if !ok {
		return nil
	}
	got, err := md5sum(path)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("md5sum for downloaded %s did not match record", archive)
	}
	return nil
}

func md5sum(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer fh.Close()
	hash := md5.New()
	if _, err := io.Copy(hash, fh); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
