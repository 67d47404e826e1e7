//go:build linux

package system

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE ioctl
)

var consolePaths = []string{"/dev/tty", "/dev/tty0"}

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Console switches the active virtual terminal between text and graphics
// mode so the framebuffer deck is not overdrawn by the console cursor.
type Console struct {
	Logger   logger
	graphics bool
}

// Graphics switches to KD_GRAPHICS and hides the cursor.
func (c *Console) Graphics() error {
	err := setMode(kdGraphics)
	c.log("KD_GRAPHICS", err)
	if err != nil {
		return err
	}
	c.graphics = true
	c.log("hide cursor", writeVT("\x1b[?25l"))
	return nil
}

// Restore returns to text mode if Graphics succeeded earlier.
func (c *Console) Restore() error {
	if !c.graphics {
		return nil
	}
	c.graphics = false
	c.log("show cursor", writeVT("\x1b[?25h"))
	err := setMode(kdText)
	c.log("KD_TEXT", err)
	return err
}

func (c *Console) log(what string, err error) {
	if c.Logger == nil {
		return
	}
	if err != nil {
		c.Logger.Errorf("tty", "%s failed: %v", what, err)
		return
	}
	c.Logger.Infof("tty", "%s done", what)
}

func setMode(mode int) error {
	var lastErr error
	for _, p := range consolePaths {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			lastErr = fmt.Errorf("open %s: %w", p, err)
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		_ = unix.Close(fd)
		if err != nil {
			lastErr = fmt.Errorf("KDSETMODE %d on %s: %w", mode, p, err)
			continue
		}
		return nil
	}
	return lastErr
}

func writeVT(s string) error {
	var lastErr error
	for _, p := range consolePaths {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = f.WriteString(s)
		_ = f.Close()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("write VT failed: %v", lastErr)
}
