package render

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Font is a parsed TrueType or OpenType font. A Font may be shared; the
// faces it creates may not.
type Font struct {
	tt *truetype.Font
	ot *opentype.Font
}

// ParseFont parses TrueType data with freetype and anything else as OpenType.
func ParseFont(data []byte, name string) (*Font, error) {
	if strings.EqualFold(filepath.Ext(name), ".otf") {
		ot, err := opentype.Parse(data)
		if err != nil {
			return nil, err
		}
		return &Font{ot: ot}, nil
	}
	tt, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return &Font{tt: tt}, nil
}

// Face returns a new face at size pixels.
func (f *Font) Face(size float64) (font.Face, error) {
	if f.tt != nil {
		return truetype.NewFace(f.tt, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
	}
	return opentype.NewFace(f.ot, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// Assets caches decoded icons and parsed fonts by absolute path while Watch
// is running. Entries are dropped when the watcher sees the file change, so
// a deleted asset fails the next render. Without a watch every call reads
// the file again.
type Assets struct {
	Logger Logger

	watching atomic.Bool

	mu    sync.RWMutex
	icons map[string]image.Image
	fonts map[string]*Font
}

func NewAssets() *Assets {
	return &Assets{icons: make(map[string]image.Image), fonts: make(map[string]*Font)}
}

func (a *Assets) Icon(path string) (image.Image, error) {
	key := cacheKey(path)
	if a.watching.Load() {
		a.mu.RLock()
		img, ok := a.icons[key]
		a.mu.RUnlock()
		if ok {
			return img, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("icon: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("icon %s: %w", path, err)
	}
	if !a.watching.Load() {
		return img, nil
	}

	a.mu.Lock()
	if a.icons == nil {
		a.icons = make(map[string]image.Image)
	}
	a.icons[key] = img
	a.mu.Unlock()
	return img, nil
}

func (a *Assets) Font(path string) (*Font, error) {
	key := cacheKey(path)
	if a.watching.Load() {
		a.mu.RLock()
		fnt, ok := a.fonts[key]
		a.mu.RUnlock()
		if ok {
			return fnt, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("font: %w", err)
	}
	fnt, err := ParseFont(data, path)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", path, err)
	}
	if !a.watching.Load() {
		return fnt, nil
	}

	a.mu.Lock()
	if a.fonts == nil {
		a.fonts = make(map[string]*Font)
	}
	a.fonts[key] = fnt
	a.mu.Unlock()
	return fnt, nil
}

// Forget drops the cached copy of path.
func (a *Assets) Forget(path string) {
	key := cacheKey(path)
	a.mu.Lock()
	delete(a.icons, key)
	delete(a.fonts, key)
	a.mu.Unlock()
}

// Len is the number of cached assets.
func (a *Assets) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.icons) + len(a.fonts)
}

// Watch invalidates cached assets under dir as they change on disk until ctx
// is done. Directories created later are watched as well.
func (a *Assets) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := addTree(watcher, dir); err != nil {
		watcher.Close()
		return err
	}
	if a.Logger != nil {
		a.Logger.Infof("assets", "watching %s", dir)
	}

	a.watching.Store(true)
	go func() {
		defer watcher.Close()
		defer a.stopWatching()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Create) {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						_ = addTree(watcher, ev.Name)
						continue
					}
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Create) {
					a.Forget(ev.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if a.Logger != nil {
					a.Logger.Errorf("assets", "watch error: %v", err)
				}
			}
		}
	}()
	return nil
}

// stopWatching empties the cache so later reads go back to disk.
func (a *Assets) stopWatching() {
	a.watching.Store(false)
	a.mu.Lock()
	a.icons = make(map[string]image.Image)
	a.fonts = make(map[string]*Font)
	a.mu.Unlock()
}

// Watching reports whether assets are currently cached.
func (a *Assets) Watching() bool { return a.watching.Load() }

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
