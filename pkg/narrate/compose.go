package narrate

import "fmt"

const checkClause = " The enemy King is threatened by this blade!"

// Compose turns a classification into the event description handed to the
// generator. The same classification always yields the same text.
func Compose(c Classification) string {
	desc := fmt.Sprintf("%s moves to %s.", c.Actor, c.Destination)
	if c.IsCapture && c.Victim != "" {
		desc = fmt.Sprintf("%s CHARGES and SLAUGHTERS %s!", c.Actor, c.Victim)
	}
	if c.IsCheck {
		desc += checkClause
	}
	if c.Threat != "" {
		desc += fmt.Sprintf(" %s is now pointing a weapon directly at %s!", c.Actor, c.Threat)
	}
	return desc
}
