package constants

const (
	// Day anchors used when a preference is missing or unparseable.
	DefaultWakeTime  = "07:30"
	DefaultSleepTime = "23:00"
	DefaultLunch     = "12:00"
	DefaultDinner    = "18:30"

	// Fixed activity durations (minutes)
	WakeRoutineMin = 30
	BreakfastMin   = 30
	LunchMin       = 60
	DinnerMin      = 60
	ShowerMin      = 30
	SleepPrepMin   = 30

	// Offsets relative to the wake/sleep anchors (minutes)
	BreakfastAfterWakeMin = 30
	ShowerBeforeSleepMin  = 90
	SleepPrepBeforeMin    = 30

	// Slot partitioning
	MinGapForAvailableMin = 10 // a gap must exceed this to hold an Available slot
	BufferBeforeFixedMin  = 5

	// Allocation
	MinAllocatableMin = 15

	// Estimates
	MinEstimateMin     = 15
	MaxEstimateMin     = 240
	DefaultEstimateMin = 30

	// Pomodoro cadence
	PomodoroWorkMin      = 25
	PomodoroBreakMin     = 5
	PomodoroLongBreakMin = 35
	PomodorosPerCycle    = 4

	// Validation thresholds
	MaxContinuousWorkMin = 120
	ContinuityGapMin     = 5
	LateNightWindowMin   = 60
)

// Preference keys read by the constraint extractor.
const (
	PrefWakeUp    = "wake_up"
	PrefSleep     = "sleep"
	PrefBreakfast = "breakfast"
	PrefLunch     = "lunch"
	PrefDinner    = "dinner"
	PrefShower    = "shower"
)

// Display names for the canonical fixed activities.
const (
	ActivityWakeRoutine = "起床洗漱"
	ActivityBreakfast   = "早餐"
	ActivityLunch       = "午餐"
	ActivityDinner      = "晚餐"
	ActivityShower      = "洗澡"
	ActivitySleepPrep   = "睡前准备"

	PomodoroBreakTitle = "短休息"
	PomodoroLongTitle  = "长休息"
	PomodoroWorkSuffix = "专注"
)
