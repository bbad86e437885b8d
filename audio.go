package nova

// BlockSource produces interleaved audio, one engine block at a time. The
// buffer is always a whole number of blocks of interleaved frames.
type BlockSource interface {
	ReadBlock(buffer []float32)
}

// AudioContext is an audio output device that pulls from a BlockSource.
type AudioContext interface {
	Play(source BlockSource) (AudioPlayer, error)
	Close() error
}

// AudioPlayer is a playing output stream.
type AudioPlayer interface {
	Close() error
}
