package domain

// Approach selects which generation template is applied to a work item.
// The two pools are closed sets; an approach outside its pool is invalid.
type Approach string

// Promotional pool: used when the project is configured for promotional copy.
const (
	ApproachDirectCTA        Approach = "direct_cta"
	ApproachSocialProof      Approach = "social_proof"
	ApproachUrgency          Approach = "urgency"
	ApproachBenefitLed       Approach = "benefit_led"
	ApproachFeatureSpotlight Approach = "feature_spotlight"
	ApproachOfferHighlight   Approach = "offer_highlight"
	ApproachComparison       Approach = "comparison"
	ApproachTestimonialEcho  Approach = "testimonial_echo"
	ApproachAuthorityClaim   Approach = "authority_claim"
	ApproachRiskReversal     Approach = "risk_reversal"
)

// Organic pool: used for non-promotional, community-voiced copy.
const (
	ApproachQuestionHook      Approach = "question_hook"
	ApproachPersonalAnecdote  Approach = "personal_anecdote"
	ApproachHotTake           Approach = "hot_take"
	ApproachPracticalTip      Approach = "practical_tip"
	ApproachCuriosityGap      Approach = "curiosity_gap"
	ApproachRelatableStruggle Approach = "relatable_struggle"
	ApproachDataPoint         Approach = "data_point"
	ApproachMythBusting       Approach = "myth_busting"
	ApproachBehindTheScenes   Approach = "behind_the_scenes"
	ApproachCommunityShoutout Approach = "community_shoutout"
	ApproachTrendCommentary   Approach = "trend_commentary"
)

// PromotionalApproaches is the closed promotional pool.
var PromotionalApproaches = []Approach{
	ApproachDirectCTA,
	ApproachSocialProof,
	ApproachUrgency,
	ApproachBenefitLed,
	ApproachFeatureSpotlight,
	ApproachOfferHighlight,
	ApproachComparison,
	ApproachTestimonialEcho,
	ApproachAuthorityClaim,
	ApproachRiskReversal,
}

// OrganicApproaches is the closed organic pool.
var OrganicApproaches = []Approach{
	ApproachQuestionHook,
	ApproachPersonalAnecdote,
	ApproachHotTake,
	ApproachPracticalTip,
	ApproachCuriosityGap,
	ApproachRelatableStruggle,
	ApproachDataPoint,
	ApproachMythBusting,
	ApproachBehindTheScenes,
	ApproachCommunityShoutout,
	ApproachTrendCommentary,
}
