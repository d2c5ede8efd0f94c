package session

import "fmt"

// Visitor-facing system notices. The assistant speaks French, so notices
// do too.
const (
	noticeStillThere = "Êtes-vous toujours là ? Sans réponse de votre part, la conversation sera fermée dans quelques minutes."
	noticeIdleClosed = "La conversation a été fermée pour cause d'inactivité. N'hésitez pas à en démarrer une nouvelle. À bientôt !"
	noticeTimeLimit  = "La durée maximale de la conversation est atteinte. La conversation est maintenant fermée. Merci de votre visite !"
	noticeFarewell   = "Merci pour votre visite ! La conversation est maintenant fermée. À bientôt chez Marakame."
	noticeClosed     = "Cette conversation est terminée. Veuillez en démarrer une nouvelle pour continuer."
	warnTimeLeft     = "Cette conversation se terminera dans moins de deux minutes."
)

func noticeMessageLimit(limit int) string {
	return fmt.Sprintf("Vous avez atteint la limite de %d messages pour cette conversation. La conversation est maintenant fermée.", limit)
}

func warnMessagesLeft(remaining int) string {
	return fmt.Sprintf("Il vous reste %d messages dans cette conversation.", remaining)
}
