package analysis

// Key is a musical key estimate: a pitch class plus major/minor mode.
type Key struct {
	PitchClass string
	Mode       string
}

// Label returns the key in its display form, e.g. "C# minor".
func (k Key) Label() string {
	return k.PitchClass + " " + k.Mode
}

var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Binary scale templates anchored at pitch class C: 1 at in-scale pitch
// classes, 0 elsewhere.
var (
	majorTemplate = [12]float64{1, 0, 1, 0, 1, 1, 0, 1, 0, 1, 0, 1}
	minorTemplate = [12]float64{1, 0, 1, 1, 0, 1, 0, 1, 1, 0, 1, 0}
)

// templateScore computes the dot product of the template rotated to root
// pitch class `root` with the chroma profile.
func templateScore(template [12]float64, profile [12]float64, root int) float64 {
	var score float64
	for j := 0; j < 12; j++ {
		score += template[((j-root)%12+12)%12] * profile[j]
	}
	return score
}

// KeyFromChroma matches the profile against all 24 rotated scale templates
// and returns the winning key. An exact tie between the best major and best
// minor score resolves to major.
func KeyFromChroma(profile [12]float64) Key {
	bestMajor, bestMinor := 0, 0
	var maxMajor, maxMinor float64
	for i := 0; i < 12; i++ {
		if s := templateScore(majorTemplate, profile, i); i == 0 || s > maxMajor {
			maxMajor, bestMajor = s, i
		}
		if s := templateScore(minorTemplate, profile, i); i == 0 || s > maxMinor {
			maxMinor, bestMinor = s, i
		}
	}

	if maxMajor >= maxMinor {
		return Key{PitchClass: pitchClasses[bestMajor], Mode: "major"}
	}
	return Key{PitchClass: pitchClasses[bestMinor], Mode: "minor"}
}

// EstimateKey computes the chroma profile of a waveform and matches it
// against the major/minor scale templates.
func EstimateKey(samples []float64, sampleRate int) (Key, error) {
	spec, err := STFT(samples, WindowSize, HopSize, Hamming(WindowSize))
	if err != nil {
		return Key{}, err
	}
	profile, err := chromaFromSpectrogram(spec, sampleRate, WindowSize)
	if err != nil {
		return Key{}, err
	}
	return KeyFromChroma(profile), nil
}
