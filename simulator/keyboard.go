package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/eiannone/keyboard"
	"github.com/rook-computer/flightdeck/internal/sim"
	"golang.org/x/term"
)

// keyEvents maps terminal keys to simulator events so the aircraft can be
// flown without a deck attached.
var keyEvents = map[rune]string{
	'a': "AP_MASTER",
	'n': "AP_NAV1_HOLD_ON",
	'h': "AP_HDG_HOLD_ON",
	'r': "AP_APR_HOLD",
	'y': "YAW_DAMPER_TOGGLE",
	'l': "LANDING_LIGHTS_TOGGLE",
	'v': "NAV1_RADIO_SWAP",
	'c': "COM_STBY_RADIO_SWAP",
	't': "AP_PANEL_ALTITUDE_HOLD",
	's': "AP_VS_HOLD",
}

func interactiveAvailable() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func printKeyHelp() {
	keys := make([]rune, 0, len(keyEvents))
	for k := range keyEvents {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		fmt.Printf("  %c  %s\r\n", k, keyEvents[k])
	}
	fmt.Print("  N  next scenario\r\n  P  pause/resume\r\n  R  reset\r\n  Esc  stop keyboard control\r\n")
}

// runKeyboard reads terminal keys until Esc, Ctrl+C or ctx is done.
// Ctrl+C calls stop so the whole simulator shuts down.
func runKeyboard(ctx context.Context, control *SimControl, stop func()) error {
	keys, err := keyboard.GetKeys(16)
	if err != nil {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); err != nil {
			fmt.Println("unable to close keyboard:", err)
		}
	}()

	printKeyHelp()
	for {
		select {
		case <-ctx.Done():
			return nil
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			if key.Err != nil {
				return key.Err
			}
			switch key.Key {
			case keyboard.KeyEsc:
				return nil
			case keyboard.KeyCtrlC:
				stop()
				return nil
			}
			handleKey(control, key.Rune)
		}
	}
}

func handleKey(control *SimControl, r rune) {
	var err error
	switch r {
	case 'N':
		err = control.NextScenario()
	case 'P':
		control.SetPaused(!control.Paused())
	case 'R':
		err = control.Reset()
	default:
		event, ok := keyEvents[r]
		if !ok {
			return
		}
		if err := sim.Trigger(control.Aircraft, event); err != nil {
			fmt.Printf("error: %v\r\n", err)
			return
		}
		fmt.Printf("%s\r\n", event)
		return
	}
	if err != nil {
		fmt.Printf("error: %v\r\n", err)
		return
	}
	fmt.Printf("scenario=%s paused=%t\r\n", control.Scenario(), control.Paused())
}
