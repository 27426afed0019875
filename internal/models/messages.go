package models

// Not-found messages shared by the repositories, services and handlers
const (
	MessageLessonNotFound       = "Leçon non trouvée"
	MessageBlockNotFound        = "Bloc non trouvé"
	MessageSummaryNotFound      = "Résumé non trouvé"
	MessageQuizNotFound         = "Quiz non trouvé"
	MessageSubscriptionNotFound = "Aucun abonnement trouvé"
	MessageNotificationNotFound = "Notification non trouvée"
	MessageTicketNotFound       = "Ticket non trouvé"
	MessageThreadNotFound       = "Conversation non trouvée"
)

// MessageLastBlock rejects removing the only block of a lesson
const MessageLastBlock = "une leçon doit contenir au moins un bloc"
