package client

// QueryKey names a logical read. Cache entries are stored as the key
// optionally followed by "?" and the read's parameters.
type QueryKey string

const (
	QueryFeedbacks     QueryKey = "feedbacks"
	QueryLatestItems   QueryKey = "latest-items"
	QueryInsights      QueryKey = "insights"
	QueryOpportunities QueryKey = "product_opportunities"
	QueryTribes        QueryKey = "tribes"
)

// Mutation names a write issued through the Client.
type Mutation string

const (
	MutCreateFeedback      Mutation = "create-feedback"
	MutSaveInsight         Mutation = "save-insight"
	MutUpdateInsightTags   Mutation = "update-insight-tags"
	MutRejectInsight       Mutation = "reject-insight"
	MutConvertInsight      Mutation = "convert-insight"
	MutCreateOpportunity   Mutation = "create-opportunity"
	MutCreateTribe         Mutation = "create-tribe"
	MutGenerateLatestItems Mutation = FnGenerateLatestItems
	MutGenerateInsights    Mutation = FnGenerateInsights
	MutAnalyzeTopics       Mutation = FnAnalyzeTopics
)

// Invalidates lists the queries each mutation makes stale. Every write in
// Client goes through invalidate with one of these keys.
var Invalidates = map[Mutation][]QueryKey{
	MutCreateFeedback:      {QueryFeedbacks, QueryLatestItems},
	MutSaveInsight:         {QueryInsights},
	MutUpdateInsightTags:   {QueryInsights},
	MutRejectInsight:       {QueryInsights},
	MutConvertInsight:      {QueryInsights, QueryOpportunities},
	MutCreateOpportunity:   {QueryOpportunities},
	MutCreateTribe:         {QueryTribes},
	MutGenerateLatestItems: {QueryLatestItems},
	MutGenerateInsights:    {QueryInsights},
	// analysis tags feed the report's tag filter
	MutAnalyzeTopics: {QueryFeedbacks},
}
