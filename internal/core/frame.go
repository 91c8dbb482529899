package core

// Substitution contract toward the media pipeline: downstream always gets a
// well-formed payload of the agreed shape, never nil.
const (
	BlankFrameWidth  = 640
	BlankFrameHeight = 480
	blankFrameDepth  = 3

	SilenceSampleRate = 16000
	SilenceSamples    = 1600 // 100ms at 16kHz
)

// VideoFrame is raw interleaved RGB, row-major.
type VideoFrame []byte

// AudioBlock is raw PCM samples at a fixed rate.
type AudioBlock struct {
	SampleRate int
	Samples    []int16
}

// BlankFrame returns a zero-filled 640x480 RGB frame.
func BlankFrame() VideoFrame {
	return make(VideoFrame, BlankFrameWidth*BlankFrameHeight*blankFrameDepth)
}

// Silence returns 100ms of zeroed 16kHz PCM.
func Silence() AudioBlock {
	return AudioBlock{SampleRate: SilenceSampleRate, Samples: make([]int16, SilenceSamples)}
}
