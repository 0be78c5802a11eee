package demo

import (
	"time"

	"gorm.io/datatypes"

	"github.com/tbourn/feedback-hub/internal/domain"
)

// UserID owns every fixture row.
const UserID = "demo-user"

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func str(s string) *string { return &s }

func tags(t ...string) datatypes.JSONSlice[string] { return datatypes.JSONSlice[string](t) }

// Feedbacks returns the fixed feedback dataset, most recent first.
func Feedbacks() []domain.Feedback {
	return []domain.Feedback{
		{
			ID: "demo-1", UserID: UserID, Source: domain.SourceManual, Status: "new", Priority: "high",
			Title:        "Bug no checkout - Pagamento não processado",
			Description:  str("O sistema de pagamento falha quando tento usar cartão de crédito. Aparece uma mensagem de erro genérica."),
			Tags:         tags("bug", "pagamento", "checkout"),
			CustomerName: str("Maria Silva"),
			Analysis: &domain.FeedbackAnalysis{
				Sentiment: domain.SentimentNegative,
				Summary:   "Bug crítico no sistema de pagamento afetando conversões",
				Tags:      []string{"bug-critico", "pagamento", "ux"},
			},
			IsTopicAnalyzed: true,
			CreatedAt:       ts("2024-01-15T10:30:00Z"),
			UpdatedAt:       ts("2024-01-15T10:30:00Z"),
		},
		{
			ID: "demo-2", UserID: UserID, Source: domain.SourceJira, Status: "in_progress", Priority: "medium",
			Title:        "Interface do dashboard poderia ser mais intuitiva",
			Description:  str("Adorei o produto! Só acho que o dashboard principal poderia ter os botões mais destacados e talvez cores mais vibrantes."),
			Tags:         tags("ui", "dashboard", "usabilidade"),
			CustomerName: str("João Santos"),
			Analysis: &domain.FeedbackAnalysis{
				Sentiment: domain.SentimentPositive,
				Summary:   "Feedback positivo com sugestão de melhoria na interface",
				Tags:      []string{"melhoria-ui", "dashboard", "experiencia-positiva"},
			},
			ExternalID:      str("JIRA-123"),
			IsTopicAnalyzed: true,
			CreatedAt:       ts("2024-01-14T14:20:00Z"),
			UpdatedAt:       ts("2024-01-14T14:20:00Z"),
		},
		{
			ID: "demo-3", UserID: UserID, Source: domain.SourceNotion, Status: "resolved", Priority: "low",
			Title:        "Funcionalidade de relatórios é excelente",
			Description:  str("A nova funcionalidade de relatórios automatizados economizou muito tempo da nossa equipe. Parabéns!"),
			Tags:         tags("relatórios", "automação", "produtividade"),
			CustomerName: str("Ana Costa"),
			Analysis: &domain.FeedbackAnalysis{
				Sentiment: domain.SentimentPositive,
				Summary:   "Elogio à funcionalidade de relatórios automatizados",
				Tags:      []string{"feature-sucesso", "produtividade", "automacao"},
			},
			ExternalID:      str("NOTION-456"),
			IsTopicAnalyzed: true,
			CreatedAt:       ts("2024-01-13T09:15:00Z"),
			UpdatedAt:       ts("2024-01-13T09:15:00Z"),
		},
		{
			ID: "demo-4", UserID: UserID, Source: domain.SourceManual, Status: "new", Priority: "medium",
			Title:        "Performance lenta em dispositivos móveis",
			Description:  str("O app demora muito para carregar no meu celular. Às vezes trava completamente."),
			Tags:         tags("performance", "mobile", "lentidão"),
			CustomerName: str("Carlos Oliveira"),
			Analysis: &domain.FeedbackAnalysis{
				Sentiment: domain.SentimentNegative,
				Summary:   "Problemas de performance em dispositivos móveis",
				Tags:      []string{"performance", "mobile", "otimizacao"},
			},
			IsTopicAnalyzed: true,
			CreatedAt:       ts("2024-01-12T16:45:00Z"),
			UpdatedAt:       ts("2024-01-12T16:45:00Z"),
		},
		{
			ID: "demo-5", UserID: UserID, Source: domain.SourceZapier, Status: "in_progress", Priority: "high",
			Title:        "Integração com Slack não funciona",
			Description:  str("Configurei a integração com o Slack mas as notificações não estão chegando. Já tentei reconfigurar várias vezes."),
			Tags:         tags("integração", "slack", "notificações"),
			CustomerName: str("Fernanda Lima"),
			Analysis: &domain.FeedbackAnalysis{
				Sentiment: domain.SentimentNegative,
				Summary:   "Falha na integração com Slack afetando notificações",
				Tags:      []string{"integracao", "slack", "notificacoes"},
			},
			ExternalID:      str("ZAP-789"),
			IsTopicAnalyzed: true,
			CreatedAt:       ts("2024-01-11T11:30:00Z"),
			UpdatedAt:       ts("2024-01-11T11:30:00Z"),
		},
	}
}

// Insights returns the active demo insights stamped with now.
func Insights(now time.Time) []domain.Insight {
	active := domain.InsightActive
	mk := func(id, title, desc, typ, sev, action string, t ...string) domain.Insight {
		return domain.Insight{
			ID: id, UserID: UserID, Title: title, Description: desc, Type: typ, Severity: sev,
			Action: str(action), Tags: tags(t...), Status: &active, CreatedAt: now,
		}
	}
	return []domain.Insight{
		mk("demo-insight-1", "Problemas de Performance Críticos",
			"Usuários relatam lentidão significativa no carregamento das páginas principais e travamentos em dispositivos móveis.",
			domain.InsightTypeAlert, domain.SeverityError,
			"Investigar problemas de performance e otimizar queries do banco de dados.",
			"performance", "mobile", "crítico"),
		mk("demo-insight-2", "Bugs no Sistema de Pagamento",
			"Identificamos múltiplos relatos de falhas no processo de checkout que estão impactando as conversões.",
			domain.InsightTypeAlert, domain.SeverityError,
			"Revisar e corrigir sistema de pagamento urgentemente.",
			"pagamento", "bug", "checkout"),
		mk("demo-insight-3", "Melhorias na Interface do Dashboard",
			"Feedback positivo sobre nova interface, mas usuários sugerem melhorias no destaque dos botões e cores.",
			domain.InsightTypeOpportunity, domain.SeverityInfo,
			"Realizar testes de usabilidade e ajustar design baseado no feedback.",
			"ui", "dashboard", "usabilidade"),
		mk("demo-insight-4", "Sucesso dos Relatórios Automatizados",
			"Usuários muito satisfeitos com a funcionalidade de relatórios, mencionando ganhos de produtividade.",
			domain.InsightTypeTrend, domain.SeveritySuccess,
			"Considerar expandir funcionalidades de relatórios com base no feedback positivo.",
			"relatórios", "automação", "produtividade"),
		mk("demo-insight-5", "Problemas de Integração com Terceiros",
			"Falhas recorrentes nas integrações com Slack e outras ferramentas estão afetando a experiência.",
			domain.InsightTypeAlert, domain.SeverityWarning,
			"Implementar retry automático e melhorar tratamento de erros nas integrações.",
			"integração", "slack", "estabilidade"),
	}
}

// insightFeedbacks links demo insights to the demo feedback they summarize.
var insightFeedbacks = map[string][]string{
	"demo-insight-1": {"demo-4"},
	"demo-insight-2": {"demo-1"},
	"demo-insight-3": {"demo-2"},
	"demo-insight-4": {"demo-3"},
	"demo-insight-5": {"demo-5"},
}

// LatestItems returns the demo mention counters, highest count first.
func LatestItems(now time.Time) []domain.LatestItem {
	mk := func(id, title string, count int, sentiment string, change int, kw ...string) domain.LatestItem {
		return domain.LatestItem{
			ID: id, UserID: UserID, Title: title, Count: count, Sentiment: sentiment,
			ChangePercentage: change, Keywords: tags(kw...), CreatedAt: now, UpdatedAt: now,
		}
	}
	return []domain.LatestItem{
		mk("demo-item-1", "Sistema de Pagamento", 15, domain.SentimentNegative, 25, "checkout", "cartão", "erro", "falha"),
		mk("demo-item-2", "Interface do Dashboard", 12, domain.SentimentPositive, -8, "ui", "design", "botões", "cores"),
		mk("demo-item-3", "Relatórios Automatizados", 10, domain.SentimentPositive, 15, "produtividade", "automação", "tempo"),
	}
}

// Tribes returns the demo organizational taxonomy.
func Tribes() []domain.Tribe {
	created := ts("2024-01-01T12:00:00Z")
	return []domain.Tribe{
		{ID: "demo-tribe-1", UserID: UserID, Name: "Growth", Description: str("Aquisição e ativação"), CreatedAt: created, UpdatedAt: created},
		{ID: "demo-tribe-2", UserID: UserID, Name: "Pagamentos", Description: str("Checkout e meios de pagamento"), CreatedAt: created, UpdatedAt: created},
	}
}

// Squads returns the demo squads.
func Squads() []domain.Squad {
	created := ts("2024-01-01T12:00:00Z")
	return []domain.Squad{
		{ID: "demo-squad-1", UserID: UserID, TribeID: "demo-tribe-1", Name: "Onboarding", CreatedAt: created, UpdatedAt: created},
		{ID: "demo-squad-2", UserID: UserID, TribeID: "demo-tribe-2", Name: "Checkout",
			JiraBoardURL: str("https://demo.atlassian.net/jira/software/projects/CHK/boards/1"), CreatedAt: created, UpdatedAt: created},
	}
}

// Opportunities returns the demo roadmap with tribe and squad names.
func Opportunities() []domain.OpportunityView {
	created := ts("2024-01-16T09:00:00Z")
	mk := func(id, title, desc, status string, tribe, squad, tribeName, squadName string) domain.OpportunityView {
		v := domain.OpportunityView{
			Opportunity: domain.Opportunity{
				ID: id, UserID: UserID, Title: title, Description: str(desc), Status: status,
				CreatedAt: created, UpdatedAt: created,
			},
			TribeName: tribeName,
			SquadName: squadName,
		}
		if tribe != "" {
			v.TribeID = str(tribe)
		}
		if squad != "" {
			v.SquadID = str(squad)
		}
		return v
	}
	return []domain.OpportunityView{
		mk("demo-opp-1", "Bugs no Sistema de Pagamento", "Corrigir falhas no checkout com cartão de crédito.",
			domain.StatusInProgress, "demo-tribe-2", "demo-squad-2", "Pagamentos", "Checkout"),
		mk("demo-opp-2", "Modo offline no app móvel", "Reduzir travamentos em conexões lentas.",
			domain.StatusNext, "demo-tribe-1", "", "Growth", ""),
		mk("demo-opp-3", "Relatórios agendados", "Enviar relatórios automatizados por e-mail.",
			domain.StatusBacklog, "", "", "", ""),
		mk("demo-opp-4", "Nova paleta do dashboard", "Destacar botões principais.",
			domain.StatusDone, "demo-tribe-1", "demo-squad-1", "Growth", "Onboarding"),
	}
}

// opportunityInsights links demo opportunities to their originating insights.
var opportunityInsights = map[string][]string{
	"demo-opp-1": {"demo-insight-2"},
	"demo-opp-4": {"demo-insight-3"},
}

// TopicResults returns the demo topic clusters.
func TopicResults(now time.Time) []domain.TopicAnalysisResult {
	return []domain.TopicAnalysisResult{
		{ID: "demo-topic-1", UserID: UserID, Topic: "Pagamentos", Summary: "Falhas no checkout com cartão.",
			Sentiment: domain.SentimentNegative, Count: 1, Keywords: tags("checkout", "cartão"), FeedbackIDs: tags("demo-1"), CreatedAt: now},
		{ID: "demo-topic-2", UserID: UserID, Topic: "Performance", Summary: "Lentidão em dispositivos móveis.",
			Sentiment: domain.SentimentNegative, Count: 1, Keywords: tags("mobile"), FeedbackIDs: tags("demo-4"), CreatedAt: now},
		{ID: "demo-topic-3", UserID: UserID, Topic: "Relatórios", Summary: "Elogios aos relatórios automatizados.",
			Sentiment: domain.SentimentPositive, Count: 1, Keywords: tags("produtividade"), FeedbackIDs: tags("demo-3"), CreatedAt: now},
	}
}

// Profiles returns the demo accounts.
func Profiles() []domain.Profile {
	created := ts("2024-01-01T12:00:00Z")
	return []domain.Profile{
		{ID: UserID, Email: str("demo@feedback-hub.dev"), FullName: str("Usuário Demo"), CreatedAt: created, UpdatedAt: created},
	}
}
