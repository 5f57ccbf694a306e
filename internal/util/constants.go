package util

const DateFormat = "2006-01-02"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 录音上传相关常量
const (
	MimeAudio     = "audio/"
	MimeVideoWebm = "video/webm" // 浏览器 MediaRecorder 录制的音频会被识别成 webm
)

var (
	AllowedAudioExtensions = []string{".mp3", ".wav", ".webm", ".ogg", ".m4a", ".aac"}
	AllowedAudioMimeTypes  = []string{MimeAudio, MimeVideoWebm, "application/ogg"}
)
