package services

import "errors"

var (
	ErrQuestionnaireNotFound  = errors.New("questionnaire introuvable")
	ErrRoadmapNotFound        = errors.New("roadmap introuvable")
	ErrTaskNotFound           = errors.New("tâche introuvable dans cette roadmap")
	ErrOwnershipMismatch      = errors.New("la ressource n'appartient pas à cet utilisateur")
	ErrConcurrentModification = errors.New("la roadmap a été modifiée par un autre appel, réessayez")
	ErrInvalidStatus          = errors.New("statut invalide")
)
