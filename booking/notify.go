package booking

// Level is the severity of a user-facing notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier receives the side effects the workflow emits for the UI.
type Notifier interface {
	Notify(level Level, message string)
	ShowLoading(message string)
	HideLoading()
	StepsChanged(steps []Step)
}

// FilmSource reports the film chosen in the movie stage.
type FilmSource interface {
	SelectedFilm() (string, bool)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Level, string) {}
func (nopNotifier) ShowLoading(string)   {}
func (nopNotifier) HideLoading()         {}
func (nopNotifier) StepsChanged([]Step)  {}
