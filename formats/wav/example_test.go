// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"bytes"
	"fmt"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/formats/wav"
)

func Example_roundTrip() {
	in := audio.NewMono(16000, []float64{0, 0.25, 0.5, 0.25, 0})

	body := new(bytes.Buffer)
	if err := wav.WriteWAV16(body, in.SampleRate, in.NumChannels(), wav.PCM16(in)); err != nil {
		fmt.Println(err)
		return
	}

	src, err := wav.Decoder{}.Decode(body)
	if err != nil {
		fmt.Println(err)
		return
	}

	out, err := audio.Collect(src)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("%d Hz, %d channel(s), %d frames\n", out.SampleRate, out.NumChannels(), out.Frames())
	fmt.Printf("peak %.2f\n", out.Peak())
	// Output:
	// 16000 Hz, 1 channel(s), 5 frames
	// peak 0.50
}
