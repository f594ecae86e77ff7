package session

// Option is one numbered entry of a selection menu.
type Option[T any] struct {
	Key   string
	Value T
	Label string
}

// Lookup returns the value bound to key in table.
func Lookup[T any](table []Option[T], key string) (T, bool) {
	for _, o := range table {
		if o.Key == key {
			return o.Value, true
		}
	}
	var zero T
	return zero, false
}

// Menu tables, in display order.
var (
	KindOptions = []Option[Kind]{
		{"1", KindPDF, "PDF to audio"},
		{"2", KindEPUB, "EPUB to audio (per-chapter ZIP)"},
		{"3", KindText, "Text string to audio"},
	}

	ModelOptions = []Option[Model]{
		{"1", ModelKokoro10, "Kokoro v1.0 (54 voices, 8 languages) [Recommended]"},
		{"2", ModelKokoro09, "Kokoro v0.9 (10 voices, English, stable)"},
		{"3", ModelQwen3CustomVoice, "Qwen3-TTS Custom Voice (10 languages, pre-configured)"},
		{"4", ModelQwen3VoiceDesign, "Qwen3-TTS Voice Design (natural language descriptions)"},
		{"5", ModelQwen3Base, "Qwen3-TTS Base (3-second voice cloning)"},
		{"6", ModelMaya1, "Maya1 (20+ emotions, requires GPU)"},
		{"7", ModelSileroV5, "Silero v5 (Russian language)"},
	}

	ExtractorOptions = []Option[Extractor]{
		{"1", ExtractorUnstructured, "Unstructured (advanced layout analysis) [Recommended]"},
		{"2", ExtractorPyMuPDF, "PyMuPDF (fast, for clean PDFs)"},
		{"3", ExtractorVision, "Apple Vision (OCR for scanned PDFs, macOS only)"},
		{"4", ExtractorNougat, "Nougat (academic papers with equations)"},
	}

	FormatOptions = []Option[Format]{
		{"1", FormatMP3, "MP3 (compressed, smaller file size)"},
		{"2", FormatWAV, "WAV (uncompressed, higher quality)"},
	}

	DeviceOptions = []Option[Device]{
		{"1", DeviceAuto, "Auto (recommended)"},
		{"2", DeviceCUDA, "CUDA (GPU)"},
		{"3", DeviceCPU, "CPU"},
		{"4", DeviceMPS, "MPS (Apple Silicon)"},
	}
)

// Voices lists the speaker identifiers a model is known to ship with. Models
// driven by free-form descriptions or reference audio have no catalog.
func Voices(m Model) []string {
	return voiceCatalog[m]
}

var voiceCatalog = map[Model][]string{
	ModelKokoro10: {
		"af_heart", "af_alloy", "af_aoede", "af_bella", "af_jessica", "af_kore",
		"af_nicole", "af_nova", "af_river", "af_sarah", "af_sky",
		"am_adam", "am_echo", "am_eric", "am_fenrir", "am_liam", "am_michael",
		"am_onyx", "am_puck", "am_santa",
		"bf_alice", "bf_emma", "bf_isabella", "bf_lily",
		"bm_daniel", "bm_fable", "bm_george", "bm_lewis",
		"jf_alpha", "jf_gongitsune", "jf_nezumi", "jf_tebukuro", "jm_kumo",
		"zf_xiaobei", "zf_xiaoni", "zf_xiaoxiao", "zf_xiaoyi",
		"zm_yunjian", "zm_yunxi", "zm_yunxia", "zm_yunyang",
		"ef_dora", "em_alex", "em_santa",
		"ff_siwis",
		"hf_alpha", "hf_beta", "hm_omega", "hm_psi",
		"if_sara", "im_nicola",
		"pf_dora", "pm_alex", "pm_santa",
	},
	ModelKokoro09: {
		"af", "af_bella", "af_nicole", "af_sarah", "af_sky",
		"am_adam", "am_michael",
		"bf_emma", "bf_isabella",
		"bm_george", "bm_lewis",
	},
	ModelQwen3CustomVoice: {
		"Vivian", "Serena", "Uncle_Fu", "Dylan", "Eric",
		"Ryan", "Aiden", "Ono_Anna", "Sohee",
	},
	ModelSileroV5: {
		"aidar", "baya", "kseniya", "xenia", "eugene",
	},
}
