package download

type Mode string

const (
	ModeAuto      Mode = "auto"
	ModeAudioOnly Mode = "audio"
)

type VideoQuality string

const (
	QualityAuto VideoQuality = "auto"
	Quality144  VideoQuality = "144"
	Quality240  VideoQuality = "240"
	Quality360  VideoQuality = "360"
	Quality480  VideoQuality = "480"
	Quality720  VideoQuality = "720"
	Quality1080 VideoQuality = "1080"
)

type AudioFormat string

const (
	AudioAuto AudioFormat = "auto"
	AudioMp3  AudioFormat = "mp3"
	AudioWav  AudioFormat = "wav"
	AudioOpus AudioFormat = "opus"
	AudioOgg  AudioFormat = "ogg"
)

type Request struct {
	URL          string
	Mode         Mode
	VideoQuality VideoQuality
	AudioFormat  AudioFormat
}

// normalize substitutes the Auto defaults exactly once, before chain
// construction. 480p and mp3 match the fixed defaults downstream relies on.
func (r Request) normalize() Request {
	if r.Mode == "" {
		r.Mode = ModeAuto
	}
	if r.VideoQuality == "" || r.VideoQuality == QualityAuto {
		r.VideoQuality = Quality480
	}
	if r.AudioFormat == "" || r.AudioFormat == AudioAuto {
		r.AudioFormat = AudioMp3
	}
	return r
}
