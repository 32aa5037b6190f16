package session

import (
	"time"

	"seq/control"
	"seq/debug"
	"seq/midi"
	"seq/theme"
)

// controllerLEDPeriod is how often an attached grid controller's LEDs are
// refreshed to reflect current track state.
const controllerLEDPeriod = 200 * time.Millisecond

// AttachController wires ctrl's pad events into this session's control
// bus — row 0 toggles a track's mute, row 1 toggles its solo, one column
// per track index — and starts a goroutine that mirrors mute/solo state
// back onto the controller's LEDs. Grounded on the teacher's
// midi/manager.go device-connect handshake and ledLoop, generalized from
// the teacher's fixed step-grid editor surface (which owned both axes of
// the grid) to this repo's clip/track model, where only a row per
// mute/solo toggle is needed; the remaining pad rows are reserved for a
// future clip-launch grid and are left dark.
//
// ctrl's own PadEvents/NoteEvents channels close when the controller
// disconnects (midi.DeviceManager.scan's removal path calls Close), which
// ends both goroutines this starts.
func (s *Session) AttachController(ctrl midi.Controller) {
	go s.controllerInputLoop(ctrl)
	go s.controllerLEDLoop(ctrl)
}

func (s *Session) controllerInputLoop(ctrl midi.Controller) {
	for pad := range ctrl.PadEvents() {
		switch pad.Row {
		case 0:
			s.Bus.Post(control.Command{Kind: control.ToggleMute, TrackIndex: pad.Col})
		case 1:
			s.Bus.Post(control.Command{Kind: control.ToggleSolo, TrackIndex: pad.Col})
		}
	}
}

func (s *Session) controllerLEDLoop(ctrl midi.Controller) {
	ticker := time.NewTicker(controllerLEDPeriod)
	defer ticker.Stop()
	th := theme.New(theme.DefaultPalette())

	for {
		select {
		case <-s.stop:
			ctrl.ClearLEDs()
			return
		case <-ticker.C:
			snaps := s.Tracks.Snapshot()
			for col, snap := range snaps {
				if col > 7 {
					break // one 8-wide grid row per axis
				}
				muteColor := [3]uint8{0, 0, 0}
				if snap.Muted {
					muteColor = [3]uint8(th.RGB(theme.RoleWarning))
				}
				if err := ctrl.SetLEDRGB(0, col, muteColor, midi.ChannelStatic); err != nil {
					debug.Log("controller", "SetLEDRGB row 0 col %d: %v", col, err)
					return
				}
				soloColor := [3]uint8{0, 0, 0}
				if snap.Solo {
					soloColor = [3]uint8(th.RGB(theme.RoleSuccess))
				}
				if err := ctrl.SetLEDRGB(1, col, soloColor, midi.ChannelStatic); err != nil {
					debug.Log("controller", "SetLEDRGB row 1 col %d: %v", col, err)
					return
				}
			}
		}
	}
}
