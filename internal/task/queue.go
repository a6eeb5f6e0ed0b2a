package task

// Type identifies one stage of the pipeline. The value doubles as the base
// queue name.
type Type string

const (
	TypeQueueAwaker          Type = "QueueAwaker"
	TypeDownloadPlaylistInfo Type = "DownloadPlaylistInfo"
	TypeDownloadMedia        Type = "DownloadMedia"
	TypeConvertVideoToWav    Type = "ConvertVideoToWav"
	TypeTranscribeVideo      Type = "TranscribeVideo"
	TypeGenerateCaptions     Type = "GenerateCaptions"
	TypeProcessVideo         Type = "ProcessVideo"
	TypeGenerateEPub         Type = "GenerateEPub"
)

// QueueName derives the queue for a task type plus an optional partition
// suffix. Pure function: the same inputs always name the same queue, so a
// republish after restart lands where the consumers are.
func QueueName(t Type, suffix string) string {
	return string(t) + suffix
}
