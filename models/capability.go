package models

// HasOwningClub реализуют сущности, права на которые следуют за владельцем клуба.
type HasOwningClub interface {
	OwningClubOwner() *int
}

// HasCoach реализуют сущности, у которых есть тренерский штаб команды.
type HasCoach interface {
	PrimaryCoach() *int
	HasAssistantCoach(userID int) bool
}

// TeamSide - сторона матча или команда игрока при проверке прав.
type TeamSide interface {
	HasOwningClub
	HasCoach
}
