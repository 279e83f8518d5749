// Command enginedemo drives the ebiten backend with a synthetic sine
// provider through the engine facade, in the shape of the teacher's
// cmd/play_mml: flag-parsed options, a watch loop over player events,
// exit when playback (here: a fixed duration) ends.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/cbegin/audiograph/engine"
	"github.com/cbegin/audiograph/internal/device"
	"github.com/cbegin/audiograph/internal/format"
	"github.com/cbegin/audiograph/internal/provider"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		freqHz     = flag.Float64("freq", 440.0, "sine frequency in Hz")
		volume     = flag.Float64("volume", 0.5, "playback volume (0..1)")
		pan        = flag.Float64("pan", 0.5, "playback pan (0=left, 0.5=center, 1=right)")
		seconds    = flag.Float64("seconds", 3.0, "how long to play before stopping")
	)
	flag.Parse()

	fmtv := format.AudioFormat{SampleRate: *sampleRate, Channels: 2, Encoding: format.F32}

	e := engine.New(device.NewEbitenBackend())
	devices, err := e.ListPlaybackDevices()
	if err != nil {
		log.Fatal(err)
	}
	if len(devices) == 0 {
		log.Fatal("no playback devices reported by backend")
	}

	prov := provider.NewSyntheticProvider(fmtv, provider.SyntheticSine, *freqHz, 1.0)
	p := engine.NewSoundPlayer("demo-tone", prov, 1024)
	p.SetVolume(float32(*volume))
	p.SetPan(float32(*pan))
	p.OnPlaybackEnded(func() { fmt.Println("playback ended") })

	e.AddComponent(p)

	d, err := e.OpenPlayback(devices[0], fmtv)
	if err != nil {
		log.Fatal(err)
	}
	if err := d.Start(); err != nil {
		log.Fatal(err)
	}

	p.Play()
	fmt.Printf("playing %.0f Hz for %.1fs on %q\n", *freqHz, *seconds, devices[0].Name)
	time.Sleep(time.Duration(*seconds * float64(time.Second)))

	p.Stop()
	if err := e.Dispose(); err != nil {
		log.Fatal(err)
	}
}
