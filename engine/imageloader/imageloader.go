// Package imageloader decodes image files into the RGBA8 pixel layout the
// engine's textures require. Cube-face sets are decoded in parallel on a
// bounded worker pool and joined before the caller proceeds to the GPU
// upload.
package imageloader

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	// Standard decoders plus the extended formats from x/image.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"golang.org/x/sync/errgroup"

	"github.com/basalt3d/basalt/common"
	"github.com/basalt3d/basalt/engine/graphics/resource"
)

// DataProvider supplies raw byte buffers for named resource paths. The
// loader never touches the filesystem directly; applications plug in a file,
// archive or embedded provider.
type DataProvider interface {
	// ProvideData returns the raw bytes of a named resource.
	//
	// Parameters:
	//   - path: the resource path
	//
	// Returns:
	//   - []byte: the resource bytes
	//   - error: an error if the resource cannot be provided
	ProvideData(path string) ([]byte, error)
}

// loader is the implementation of the Loader interface.
type loader struct {
	provider DataProvider
	pool     worker.DynamicWorkerPool
}

// Loader decodes images supplied by a DataProvider.
type Loader interface {
	// LoadImage loads and decodes one image to RGBA8.
	//
	// Parameters:
	//   - path: the resource path
	//
	// Returns:
	//   - common.ImageData: the decoded image, ChannelsCount 4
	//   - error: an error if providing or decoding fails
	LoadImage(path string) (common.ImageData, error)

	// LoadImages loads several independent images concurrently. The first
	// failure cancels the batch and is returned.
	//
	// Parameters:
	//   - paths: the resource paths
	//
	// Returns:
	//   - []common.ImageData: decoded images in path order
	//   - error: the first load failure
	LoadImages(paths []string) ([]common.ImageData, error)

	// LoadCubeFaces loads and decodes the six cube face images, fanning the
	// decode work out across the worker pool and joining before returning.
	// The join is unconditional: results are only consumed once every face
	// has finished, and the first failure fails the whole load.
	//
	// Parameters:
	//   - paths: exactly six face paths, +X -X +Y -Y +Z -Z order
	//
	// Returns:
	//   - []common.ImageData: the six decoded faces in face order
	//   - error: the first face failure
	LoadCubeFaces(paths []string) ([]common.ImageData, error)

	// Close drains the worker pool, blocking until the workers idle out.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a Loader reading from the given provider.
//
// Parameters:
//   - provider: the byte source for resource paths
//   - options: functional options to configure the loader
//
// Returns:
//   - Loader: the new loader
func NewLoader(provider DataProvider, options ...LoaderOption) Loader {
	l := &loader{provider: provider}
	workers := resource.CubeFaceCount
	for _, option := range options {
		workers = option(workers)
	}
	l.pool = worker.NewDynamicWorkerPool(workers, 256, 1*time.Second)
	return l
}

// LoaderOption is a functional option used to configure a Loader during
// construction.
type LoaderOption func(workers int) int

// WithWorkers sets the decode worker count. Defaults to the cube face count
// so a full cube set decodes in one wave.
//
// Parameters:
//   - workers: the worker pool size
//
// Returns:
//   - LoaderOption: a function that sets the worker count
func WithWorkers(workers int) LoaderOption {
	return func(int) int {
		return workers
	}
}

// Decode converts encoded image bytes to the RGBA8 layout textures require.
//
// Parameters:
//   - data: the encoded image bytes (PNG, JPEG, BMP or TIFF)
//
// Returns:
//   - common.ImageData: the decoded image, ChannelsCount 4
//   - error: an error if decoding fails
func Decode(data []byte) (common.ImageData, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return common.ImageData{}, fmt.Errorf("imageloader: decode: %w", err)
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return common.ImageData{
		Width:         uint32(bounds.Dx()),
		Height:        uint32(bounds.Dy()),
		ChannelsCount: 4,
		Pixels:        rgba.Pix,
	}, nil
}

func (l *loader) LoadImage(path string) (common.ImageData, error) {
	data, err := l.provider.ProvideData(path)
	if err != nil {
		return common.ImageData{}, fmt.Errorf("imageloader: %q: %w", path, err)
	}
	img, err := Decode(data)
	if err != nil {
		return common.ImageData{}, fmt.Errorf("imageloader: %q: %w", path, err)
	}
	return img, nil
}

func (l *loader) LoadImages(paths []string) ([]common.ImageData, error) {
	images := make([]common.ImageData, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			img, err := l.LoadImage(path)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func (l *loader) LoadCubeFaces(paths []string) ([]common.ImageData, error) {
	if len(paths) != resource.CubeFaceCount {
		return nil, fmt.Errorf("imageloader: cube requires %d faces, got %d", resource.CubeFaceCount, len(paths))
	}

	// The shared results are guarded by a mutex and only read after the
	// WaitGroup join, so the decode fan-out never races the collection.
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		faces    = make([]common.ImageData, resource.CubeFaceCount)
		firstErr error
	)
	for i, path := range paths {
		wg.Add(1)
		index := i
		facePath := path
		l.pool.SubmitTask(worker.Task{
			ID: index,
			Do: func() (any, error) {
				defer wg.Done()
				img, err := l.LoadImage(facePath)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					return nil, err
				}
				faces[index] = img
				return nil, nil
			},
		})
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return faces, nil
}

func (l *loader) Close() {
	l.pool.Wait()
}
