package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"step-machine/midiout"
	"step-machine/sequencer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "poll":
		pollDevices()
	case "hit":
		hit(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list             - List all MIDI ports")
	fmt.Println("  poll             - Poll for device changes")
	fmt.Println("  hit [track]      - Send one hit to the first output port (default: kick)")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds. Ctrl+C to exit.")

	last := ""
	for {
		var names []string
		for _, p := range midi.GetOutPorts() {
			names = append(names, p.String())
		}
		current := strings.Join(names, ",")
		if current != last {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Outputs: %v\n", names)
			last = current
		}
		time.Sleep(2 * time.Second)
	}
}

func hit(args []string) {
	track := sequencer.TrackKick
	if len(args) > 0 {
		track = sequencer.Track(args[0])
	}
	kit := midiout.GetKit(midiout.DefaultKit)
	note, ok := kit.Notes[track]
	if !ok {
		fmt.Printf("unknown track %q\n", track)
		return
	}

	outs := midi.GetOutPorts()
	if len(outs) == 0 {
		fmt.Println("No MIDI output ports")
		return
	}
	fmt.Printf("Using output: %s\n", outs[0].String())

	send, err := midi.SendTo(outs[0])
	if err != nil {
		fmt.Printf("Error opening port: %v\n", err)
		return
	}

	send(midi.NoteOn(9, note, 100)) // channel 10, the GM percussion channel
	time.Sleep(100 * time.Millisecond)
	send(midi.NoteOff(9, note))
	fmt.Println("Done!")
}
