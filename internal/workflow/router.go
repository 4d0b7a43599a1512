package workflow

import (
	"ingester/internal/stages"
	"ingester/internal/state"
)

// Next returns the stage that follows prev for the given record, or false
// when the execution is finished. The empty string stands for the start of
// an execution: a fresh record routes to classification, while a record
// resumed from a suspension routes straight to the resume stage matching its
// pending scan. A record left suspended by prev ends the execution; the
// async job's completion starts the successor.
func Next(prev string, st *state.State) (string, bool) {
	if st.Suspended() && prev != "" {
		return "", false
	}

	switch prev {
	case "":
		if st.Suspended() {
			switch st.PendingScanResults {
			case state.PendingModeration:
				return stages.StageResumeModeration, true
			case state.PendingKeywording:
				return stages.StageResumeKeywords, true
			case state.PendingCelebrityDetection:
				return stages.StageResumeCelebrities, true
			}
			return "", false
		}
		return stages.StageDetermineMediaType, true

	case stages.StageDetermineMediaType:
		switch st.ContentType {
		case state.ContentImage, state.ContentVideo:
			return stages.StageModerationScan, true
		case state.ContentAudio:
			return stages.StageAudioToText, true
		case state.ContentText:
			return stages.StageTextToAudio, true
		default:
			return stages.StageRemoveInput, true
		}

	case stages.StageModerationScan, stages.StageResumeModeration:
		if st.IsUnsafe {
			return stages.StageRemoveInput, true
		}
		return stages.StageKeywordScan, true

	case stages.StageKeywordScan, stages.StageResumeKeywords:
		return stages.StageCelebrityScan, true

	case stages.StageCelebrityScan, stages.StageResumeCelebrities:
		switch st.ContentType {
		case state.ContentImage:
			return stages.StageCreateThumbnail, true
		case state.ContentVideo:
			return stages.StageCopyAndTag, true
		default:
			return stages.StageRemoveInput, true
		}

	case stages.StageCreateThumbnail:
		return stages.StageCopyAndTag, true

	case stages.StageAudioToText, stages.StageTextToAudio:
		return stages.StageRemoveInput, true

	case stages.StageCopyAndTag:
		return stages.StageRemoveInput, true

	case stages.StageRemoveInput:
		return stages.StageNotifyComplete, true
	}

	return "", false
}
