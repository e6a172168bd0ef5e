// README: Spoken cue catalogue shared by the passenger and driver flows.
package notify

import "fmt"

// Cues holds every phrase the flows announce. Inject a custom value to
// localise; the zero value of a field silences that cue.
type Cues struct {
	RideRequest      string
	RideAccepted     string
	OTPCorrect       string
	OTPWrong         string
	TripStarted      string
	ArrivedPickup    string
	ArrivedDropoff   string
	LowBalance       string
	PayoutDone       string
	InvalidDetails   string
	DetailsSaved     string
	BookingConfirmed string
	PaymentSuccess   string
	RideCancelled    string
	// ScheduledFormat takes the date then the time.
	ScheduledFormat string
}

// DefaultCues are the Hindi (romanised) phrases.
func DefaultCues() Cues {
	return Cues{
		RideRequest:      "Aapke liye naya ride request hai.",
		RideAccepted:     "Ride accept ho gayi hai.",
		OTPCorrect:       "Code sahi hai.",
		OTPWrong:         "Ghalat code.",
		TripStarted:      "O T P verify ho gaya hai. Trip shuru ho gayi hai. Shubh yatra.",
		ArrivedPickup:    "Aap pickup location par pahunch gaye hain. Kripya passenger se security code maange.",
		ArrivedDropoff:   "Aap destination par pahunch gaye hain. Trip poori ho gayi hai poori ho gayi hai.",
		LowBalance:       "Aapka balance kam hai.",
		PayoutDone:       "Paisay transfer kar diye gaye hain.",
		InvalidDetails:   "Kripya sahi jaankari bhare.",
		DetailsSaved:     "Details save ho gayi hain.",
		BookingConfirmed: "Booking confirm ho gayi. Driver aa raha hai.",
		PaymentSuccess:   "Payment safal raha. Dhanyawad!",
		RideCancelled:    "Aapki ride cancel ho gayi hai",
		ScheduledFormat:  "Aapka ride %s ko %s baje ke liye schedule ho gaya hai.",
	}
}

func (c Cues) Scheduled(date, clock string) string {
	if c.ScheduledFormat == "" {
		return ""
	}
	return fmt.Sprintf(c.ScheduledFormat, date, clock)
}
