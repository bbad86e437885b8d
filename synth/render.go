package synth

// RenderBlock computes one block of the given synths and interleaves the
// output buses of the world into out, which must hold BlockSize frames of
// OutputChannels samples.
func RenderBlock(w *World, synths []*Synth, out []float32) {
	w.ClearAudioBuses()
	for _, s := range synths {
		s.Run()
	}
	channels := w.Config.OutputChannels
	for c := 0; c < channels; c++ {
		bus := w.AudioBusChannel(c)
		for i, v := range bus {
			out[i*channels+c] = v
		}
	}
}

// Render runs the synths for the given number of blocks and returns the
// interleaved output.
func Render(w *World, synths []*Synth, blocks int) []float32 {
	frameSize := w.Config.BlockSize * w.Config.OutputChannels
	out := make([]float32, blocks*frameSize)
	for b := 0; b < blocks; b++ {
		RenderBlock(w, synths, out[b*frameSize:(b+1)*frameSize])
	}
	return out
}
