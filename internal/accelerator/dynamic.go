// Dynamic accelerator runtime loader: no cgo, the accelerator's shared
// library is located on disk and its memory-transfer/kernel-launch
// symbols are bound with purego at runtime.
//
// The symbols bound here are the capability boundary only. What the
// kernel behind them actually computes lives in a separate runtime
// library this repo never ships.
package accelerator

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

var (
	libOnce sync.Once
	libErr  error

	devicePush func(ptr uintptr, n uint64) int32
	devicePull func(ptr uintptr, n uint64) int32
)

type dynamicBackend struct{}

func newDynamic() (Backend, error) {
	libOnce.Do(func() {
		path, err := findAcceleratorLib()
		if err != nil {
			libErr = err
			return
		}
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			libErr = fmt.Errorf("accelerator: opening %s: %w", path, err)
			return
		}
		purego.RegisterLibFunc(&devicePush, handle, "pink_accelerator_push")
		purego.RegisterLibFunc(&devicePull, handle, "pink_accelerator_pull")
	})
	if libErr != nil {
		return nil, libErr
	}
	return dynamicBackend{}, nil
}

func (dynamicBackend) Name() string    { return "dynamic" }
func (dynamicBackend) Available() bool { return libErr == nil }

func (dynamicBackend) Push(buf []float32) error {
	if len(buf) == 0 {
		return nil
	}
	if devicePush(uintptrOf(buf), uint64(len(buf))) != 0 {
		return fmt.Errorf("accelerator: push failed")
	}
	return nil
}

func (dynamicBackend) Pull(buf []float32) error {
	if len(buf) == 0 {
		return nil
	}
	if devicePull(uintptrOf(buf), uint64(len(buf))) != 0 {
		return fmt.Errorf("accelerator: pull failed")
	}
	return nil
}

// findAcceleratorLib searches a small set of well-known directories for
// the platform accelerator runtime shared library, the same search-path
// shape as qubicDB-qubicdb/pkg/vector/loader.go's findLibrary.
func findAcceleratorLib() (string, error) {
	name := libraryName()
	dirs := []string{"/usr/lib", "/usr/local/lib"}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	for _, envKey := range []string{"LD_LIBRARY_PATH", "DYLD_LIBRARY_PATH"} {
		if val := os.Getenv(envKey); val != "" {
			dirs = append(dirs, strings.Split(val, ":")...)
		}
	}

	checked := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		checked = append(checked, path)
	}
	return "", fmt.Errorf("accelerator runtime '%s' not found, checked:\n\t%s", name, strings.Join(checked, "\n\t"))
}

func uintptrOf(buf []float32) uintptr {
	return uintptr(unsafe.Pointer(&buf[0]))
}

func libraryName() string {
	switch runtime.GOOS {
	case "windows":
		return "pink_accelerator.dll"
	case "darwin":
		return "libpink_accelerator.dylib"
	default:
		return "libpink_accelerator.so"
	}
}
