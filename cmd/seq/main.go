// Package main is the entry point for the seq CLI: the root session
// runner plus the MIDI diagnostic subcommands spec.md §6 names. Grounded
// on james-see-synthtribe2midi's cmd/synthtribe2midi/main.go (a single
// file, package-level Command vars, init() wiring flags and
// AddCommand, RunE returning a propagated error) and
// gomidi-hyperarp/cmd/hyperarp/main.go for the os/signal interrupt shape
// test-clock/monitor/run block on.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"seq/config"
	"seq/errs"
	"seq/midi"
	"seq/session"
	"seq/theme"
	"seq/timing"
	"seq/tui"
)

var (
	configFile  string
	paletteFile string
	headless    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps the errs taxonomy onto spec.md §6's "non-zero on
// configuration error, MIDI device unavailable, or unrecoverable runtime
// failure" contract: exit code 2 for Configuration, 3 for Resource and 4
// for Logic-fatal errors, 1 for anything else (including
// Runtime-recoverable errors that reach main).
func exitCode(err error) int {
	switch {
	case errs.IsConfiguration(err):
		return 2
	case errs.IsResource(err):
		return 3
	case errs.IsLogicFatal(err):
		return 4
	default:
		return 1
	}
}

var rootCmd = &cobra.Command{
	Use:   "seq",
	Short: "Live-performance algorithmic MIDI sequencer",
	Long: `seq loads a song document (tracks, clips, generators, parts, scenes,
song sections) and plays it against a MIDI output, driven by its own
timing core rather than a DAW transport.

Examples:
  seq --config song.yaml
  seq list-midi
  seq test-note "IAC Driver Bus 1"
  seq test-clock "IAC Driver Bus 1" 120
  seq monitor "IAC Driver Bus 1"`,
	RunE: runSession,
}

var listMidiCmd = &cobra.Command{
	Use:   "list-midi",
	Short: "List available MIDI output ports",
	RunE:  runListMidi,
}

var listSourcesCmd = &cobra.Command{
	Use:   "list-sources",
	Short: "List available MIDI input ports",
	RunE:  runListSources,
}

var testNoteCmd = &cobra.Command{
	Use:   "test-note <dest>",
	Short: "Send a single test note to a MIDI output",
	Args:  cobra.ExactArgs(1),
	RunE:  runTestNote,
}

var testClockCmd = &cobra.Command{
	Use:   "test-clock <dest> <bpm>",
	Short: "Emit MIDI clock pulses to a MIDI output at a given tempo",
	Args:  cobra.ExactArgs(2),
	RunE:  runTestClock,
}

var monitorCmd = &cobra.Command{
	Use:   "monitor <source>",
	Short: "Print every incoming MIDI message from a MIDI input",
	Args:  cobra.ExactArgs(1),
	RunE:  runMonitor,
}

var exportBars int

var exportCmd = &cobra.Command{
	Use:   "export <song.yaml> <out.mid>",
	Short: "Render a song document's track clips to a Standard MIDI File",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "song document path (default: ~/.config/seq/song.yaml)")
	rootCmd.Flags().StringVar(&paletteFile, "palette", "", "GIMP .gpl palette for the status view (default: built-in)")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "run without the terminal status view")

	rootCmd.AddCommand(listMidiCmd)
	rootCmd.AddCommand(listSourcesCmd)
	rootCmd.AddCommand(testNoteCmd)
	rootCmd.AddCommand(testClockCmd)
	rootCmd.AddCommand(monitorCmd)

	exportCmd.Flags().IntVar(&exportBars, "bars", 8, "number of bars to render")
	rootCmd.AddCommand(exportCmd)
}

// runSession is the default action: load the song document, open a real
// MIDI sink, build and start a session.Session, and block until
// interrupted.
func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	dest := firstControllerPort(cfg)
	sink, err := openSink(dest)
	if err != nil {
		return err
	}
	defer sink.Close()

	sess, err := session.Build(cfg, sink)
	if err != nil {
		return err
	}

	sess.Start()
	defer sess.Stop()

	devCtx, stopDevices := context.WithCancel(context.Background())
	defer stopDevices()
	startControllerWatch(devCtx, sess)

	if headless {
		fmt.Printf("seq: playing %q (%d tracks) — ctrl-c to stop\n", cfg.Name, len(sess.Tracks.Tracks))
		waitForInterrupt()
		return nil
	}

	th := theme.New(loadPalette(paletteFile))
	_, err = tea.NewProgram(tui.NewModel(sess, th)).Run()
	return err
}

// runExport renders a song document's clips to a .mid file without
// opening a MIDI output, per spec.md §6's file-export path — an offline
// counterpart to runSession's live playback built on the same
// session.Build/config.Load wiring, using sess.Tracks.Bounce in place of
// the clock-driven fill loop.
func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}

	sess, err := session.Build(cfg, midi.NewMemorySink())
	if err != nil {
		return err
	}

	tracks := sess.Tracks.Bounce(exportBars)
	if err := midi.ExportSMF(args[1], timing.PPQN, tracks); err != nil {
		return errs.Wrapf(errs.Resource, err, "exporting %q", args[1])
	}
	fmt.Printf("seq: rendered %d bars of %q to %q\n", exportBars, cfg.Name, args[1])
	return nil
}

// startControllerWatch runs a midi.DeviceManager's hot-plug poll loop for
// the session's lifetime, attaching every Launchpad/keyboard it finds to
// sess so pad presses reach the control bus and LEDs mirror track state.
// A song document with no hardware controller plugged in runs exactly as
// it did before this watch existed: scan() simply never sees a match.
func startControllerWatch(ctx context.Context, sess *session.Session) {
	dm := midi.NewDeviceManager()
	go dm.Run(ctx)
	go func() {
		for evt := range dm.Events() {
			if evt.Type == midi.DeviceConnected {
				sess.AttachController(evt.Controller)
			}
		}
	}()
}

// loadPalette loads path as a .gpl palette if given, falling back to the
// built-in gradient so the status view never requires an external asset.
func loadPalette(path string) *theme.Palette {
	if path == "" {
		return theme.DefaultPalette()
	}
	p, err := theme.LoadGPL(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seq: %v, using built-in palette\n", err)
		return theme.DefaultPalette()
	}
	return p
}

// firstControllerPort returns the port name of cfg's first auto-connect
// controller, or "" if none is configured (openSink then falls back to
// an in-memory sink so a song document with no MIDI hardware attached
// still runs).
func firstControllerPort(cfg *config.Config) string {
	for _, c := range cfg.Controllers {
		if c.AutoConnect && c.PortName != "" {
			return c.PortName
		}
	}
	return ""
}

func openSink(dest string) (midi.MidiSink, error) {
	if dest == "" {
		return midi.NewMemorySink(), nil
	}
	sink, err := midi.OpenPortSink(dest)
	if err != nil {
		return nil, errs.Wrapf(errs.Resource, err, "opening MIDI output %q", dest)
	}
	return sink, nil
}

func waitForInterrupt() {
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt)
	<-sigchan
	fmt.Println("\nseq: stopping")
}

func runListMidi(cmd *cobra.Command, args []string) error {
	for _, name := range midi.ListOutputs() {
		fmt.Println(name)
	}
	return nil
}

func runListSources(cmd *cobra.Command, args []string) error {
	for _, name := range midi.ListInputs() {
		fmt.Println(name)
	}
	return nil
}

func runTestNote(cmd *cobra.Command, args []string) error {
	sink, err := midi.OpenPortSink(args[0])
	if err != nil {
		return errs.Wrapf(errs.Resource, err, "opening MIDI output %q", args[0])
	}
	defer sink.Close()

	const channel, pitch, velocity = 0, 60, 100
	if err := sink.Send(midi.NewNoteOn(0, channel, pitch, velocity, 0).Bytes()); err != nil {
		return errs.Wrap(errs.Resource, err, "sending test note")
	}
	time.Sleep(300 * time.Millisecond)
	return sink.Send(midi.NewNoteOff(0, channel, pitch).Bytes())
}

func runTestClock(cmd *cobra.Command, args []string) error {
	sink, err := midi.OpenPortSink(args[0])
	if err != nil {
		return errs.Wrapf(errs.Resource, err, "opening MIDI output %q", args[0])
	}
	defer sink.Close()

	var bpm float64
	if _, err := fmt.Sscanf(args[1], "%f", &bpm); err != nil {
		return errs.Configf("invalid bpm %q", args[1])
	}

	clock := timing.NewClock(bpm)
	master := timing.NewMasterClock(clock, sink)
	master.Start()
	fmt.Printf("seq: emitting clock at %.1f bpm to %q — ctrl-c to stop\n", bpm, args[0])
	waitForInterrupt()
	master.Stop()
	return nil
}

func runMonitor(cmd *cobra.Command, args []string) error {
	source, err := midi.OpenPortSource(args[0])
	if err != nil {
		return errs.Wrapf(errs.Resource, err, "opening MIDI input %q", args[0])
	}
	defer source.Close()

	stop, err := source.Listen(func(msg []byte, ts time.Time) {
		fmt.Printf("%s % X\n", ts.Format("15:04:05.000"), msg)
	})
	if err != nil {
		return errs.Wrap(errs.Resource, err, "listening on MIDI input")
	}
	defer stop()

	fmt.Printf("seq: monitoring %q — ctrl-c to stop\n", args[0])
	waitForInterrupt()
	return nil
}
