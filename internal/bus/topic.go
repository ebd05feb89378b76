package bus

// Topic names a kind of event.
type Topic string

// Unit lifecycle topics, published by a playback unit.
const (
	TopicLoadStart     Topic = "loadstart"
	TopicCanPlay       Topic = "canplay"
	TopicPlay          Topic = "play"
	TopicPause         Topic = "pause"
	TopicPlayInternal  Topic = "play-internal"
	TopicPauseInternal Topic = "pause-internal"
	TopicEnded         Topic = "ended"
	TopicError         Topic = "error"
	TopicWaiting       Topic = "waiting"
	TopicDuration      Topic = "duration"
	TopicSeeked        Topic = "seeked"
	TopicTime          Topic = "time"
	TopicTimeInternal  Topic = "time-internal"
)

// Crossfade cycle topics.
const (
	TopicQueueNext       Topic = "queueNext"
	TopicStartFadeOut    Topic = "startFadeOut"
	TopicEndFadeOut      Topic = "endFadeOut"
	TopicNextSong        Topic = "nextSong"
	TopicSetCurrentAudio Topic = "setCurrentAudio"
)

// Queue and engine state topics.
const (
	TopicSong    Topic = "song"
	TopicQueue   Topic = "queue"
	TopicBacklog Topic = "backlog"
	TopicShuffle Topic = "shuffle"
	TopicRepeat  Topic = "repeat"
	TopicVolume  Topic = "volume"
	TopicMute    Topic = "mute"
	TopicStop    Topic = "stop"
	TopicReady   Topic = "ready"
)
