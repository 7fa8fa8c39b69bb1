package db

import (
	"github.com/A7medBenRomdhanO/backend/internal/engine"
	"github.com/A7medBenRomdhanO/backend/internal/models"
	"gorm.io/gorm"
)

// SeedQuestions inserts the canonical ISO 27001 question catalog if missing.
// Idempotent: existing question ids are left untouched.
func SeedQuestions(db *gorm.DB) {
	for i, q := range baseQuestions {
		q.Position = i + 1
		var existing models.Question
		if err := db.Where("question_id = ?", q.QuestionID).First(&existing).Error; err == gorm.ErrRecordNotFound {
			db.Create(&q)
		}
	}
}

var baseQuestions = []models.Question{
	// Plan
	{QuestionID: "plan-1", Text: "Une politique de sécurité de l'information est-elle formellement approuvée par la direction ?", Category: engine.CategoryPlan, Clause: "5.2", Weight: 10, Critical: true},
	{QuestionID: "plan-2", Text: "Le périmètre du SMSI est-il documenté et tenu à jour ?", Category: engine.CategoryPlan, Clause: "4.3", Weight: 8},
	{QuestionID: "plan-3", Text: "Une appréciation des risques de sécurité est-elle réalisée périodiquement ?", Category: engine.CategoryPlan, Clause: "6.1.2", Weight: 10, Critical: true},
	{QuestionID: "plan-4", Text: "Les objectifs de sécurité sont-ils définis et mesurables ?", Category: engine.CategoryPlan, Clause: "6.2", Weight: 6},
	// Do
	{QuestionID: "do-1", Text: "Les actifs informationnels sont-ils inventoriés avec un propriétaire identifié ?", Category: engine.CategoryDo, Clause: "A.5.9", Weight: 8},
	{QuestionID: "do-2", Text: "Les accès aux systèmes sont-ils attribués selon le principe du moindre privilège ?", Category: engine.CategoryDo, Clause: "A.5.15", Weight: 10, Critical: true},
	{QuestionID: "do-3", Text: "Les sauvegardes sont-elles réalisées et testées régulièrement ?", Category: engine.CategoryDo, Clause: "A.8.13", Weight: 10, Critical: true},
	{QuestionID: "do-4", Text: "Le personnel est-il sensibilisé à la sécurité de l'information ?", Category: engine.CategoryDo, Clause: "7.3", Weight: 6},
	// Check
	{QuestionID: "check-1", Text: "Des audits internes du SMSI sont-ils planifiés et réalisés ?", Category: engine.CategoryCheck, Clause: "9.2", Weight: 10, Critical: true},
	{QuestionID: "check-2", Text: "Les événements de sécurité sont-ils journalisés et revus ?", Category: engine.CategoryCheck, Clause: "A.8.15", Weight: 8},
	{QuestionID: "check-3", Text: "La performance du SMSI est-elle mesurée par des indicateurs ?", Category: engine.CategoryCheck, Clause: "9.1", Weight: 6},
	{QuestionID: "check-4", Text: "Une revue de direction du SMSI a-t-elle lieu à intervalles planifiés ?", Category: engine.CategoryCheck, Clause: "9.3", Weight: 8},
	// Act
	{QuestionID: "act-1", Text: "Les non-conformités font-elles l'objet d'actions correctives suivies ?", Category: engine.CategoryAct, Clause: "10.1", Weight: 10, Critical: true},
	{QuestionID: "act-2", Text: "Les enseignements des incidents de sécurité sont-ils intégrés au SMSI ?", Category: engine.CategoryAct, Clause: "A.5.27", Weight: 8},
	{QuestionID: "act-3", Text: "Le SMSI est-il amélioré de manière continue ?", Category: engine.CategoryAct, Clause: "10.2", Weight: 6},
	{QuestionID: "act-4", Text: "Les plans de traitement des risques sont-ils réévalués après chaque évolution majeure ?", Category: engine.CategoryAct, Clause: "8.3", Weight: 8},
}
