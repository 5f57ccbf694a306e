package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// AudioInfo 录音文件的元数据
type AudioInfo struct {
	Duration   float64 `json:"duration"` // 秒
	Codec      string  `json:"codec"`
	SampleRate int     `json:"sampleRate"`
	Format     string  `json:"format"`
	Size       int64   `json:"size"`
}

// GetAudioInfo 使用 ffprobe 读取录音时长和编码
func GetAudioInfo(audioPath string) (*AudioInfo, error) {
	fileInfo, err := os.Stat(audioPath)
	if err != nil {
		return nil, fmt.Errorf("录音文件不存在: %v", err)
	}

	jsonOutput, err := ffmpeg.Probe(audioPath)
	if err != nil {
		return nil, fmt.Errorf("获取录音信息失败: %v", err)
	}
	return parseProbeOutput(jsonOutput, fileInfo.Size())
}

func parseProbeOutput(jsonOutput string, fallbackSize int64) (*AudioInfo, error) {
	var result struct {
		Streams []struct {
			CodecType  string `json:"codec_type"`
			CodecName  string `json:"codec_name"`
			SampleRate string `json:"sample_rate"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
			Size     string `json:"size"`
			Format   string `json:"format_name"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(jsonOutput), &result); err != nil {
		return nil, fmt.Errorf("解析录音信息失败: %v", err)
	}

	info := &AudioInfo{Format: "unknown", Size: fallbackSize}
	for _, stream := range result.Streams {
		if stream.CodecType == "audio" {
			info.Codec = stream.CodecName
			info.SampleRate, _ = strconv.Atoi(stream.SampleRate)
			break
		}
	}

	if d, err := strconv.ParseFloat(result.Format.Duration, 64); err == nil {
		info.Duration = d
	}
	if size, err := strconv.ParseInt(result.Format.Size, 10, 64); err == nil {
		info.Size = size
	}
	if parts := strings.Split(result.Format.Format, ","); len(parts) > 0 && parts[0] != "" {
		info.Format = parts[0]
	}
	return info, nil
}

// GetFFmpegVersion 健康检查用，确认 ffmpeg 已安装
func GetFFmpegVersion() (string, error) {
	// ffmpeg-go 没有提供执行任意子命令的接口
	cmd := exec.Command("ffmpeg", "-version", "-hide_banner")
	var out bytes.Buffer
	var errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("获取FFmpeg版本失败，请确保FFmpeg已正确安装: %v, %s", err, errOut.String())
	}

	firstLine := strings.SplitN(out.String(), "\n", 2)[0]
	return strings.TrimSpace(firstLine), nil
}
