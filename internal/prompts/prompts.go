// Package prompts holds the prompt templates for each onboarding phase and
// the directive lines attached per generation approach. Wording here is a
// content concern; the pipeline only cares that a phase maps to a system
// prompt and an approach maps to a directive.
package prompts

import (
	"fmt"
	"strings"

	"github.com/draftline/draftline/internal/domain"
)

// phaseSystemPrompts maps each phase to its system prompt.
var phaseSystemPrompts = map[domain.Phase]string{
	domain.PhaseCategorization: `You are a site-structure analyst. Given a page reference and its extract, assign the single best-fitting category for the page. Respond with the category name only, no explanation.`,

	domain.PhaseLabeling: `You are a content taxonomist. Given a page reference and its extract, produce a short comma-separated list of 3-5 descriptive labels. Respond with the labels only.`,

	domain.PhaseKeywords: `You are an SEO researcher. Given a seed keyword and its context, produce one refined target keyword phrase with strong search intent. Respond with the phrase only.`,

	domain.PhasePeopleAlsoAsk: `You are an SEO researcher. Given a target keyword, write one natural-sounding question a searcher would also ask about the topic. Respond with the question only.`,

	domain.PhaseBrandVoice: `You are a brand strategist. Given notes about a business, write one concise sentence capturing its voice and tone for future copywriting. Respond with the sentence only.`,

	domain.PhaseComments: `You are a social media community member. Given a post, write one short comment in a natural, human register. Keep it under 280 characters. Respond with the comment only.`,
}

// approachDirectives maps each approach to the instruction appended to the
// user prompt. Every member of both pools has an entry.
var approachDirectives = map[domain.Approach]string{
	// Promotional pool
	domain.ApproachDirectCTA:        "End with a clear, direct call to action.",
	domain.ApproachSocialProof:      "Reference how many others already use or like it.",
	domain.ApproachUrgency:          "Convey time pressure or limited availability without being pushy.",
	domain.ApproachBenefitLed:       "Lead with the concrete benefit to the reader.",
	domain.ApproachFeatureSpotlight: "Center one specific feature and what it does.",
	domain.ApproachOfferHighlight:   "Mention the current offer or deal prominently.",
	domain.ApproachComparison:       "Contrast favorably with the typical alternative.",
	domain.ApproachTestimonialEcho:  "Write as if echoing a satisfied customer's words.",
	domain.ApproachAuthorityClaim:   "Ground the message in expertise or credentials.",
	domain.ApproachRiskReversal:     "Address the reader's main hesitation and remove it.",

	// Organic pool
	domain.ApproachQuestionHook:      "Open with a question that pulls the reader in.",
	domain.ApproachPersonalAnecdote:  "Frame it as a brief first-person experience.",
	domain.ApproachHotTake:           "Take a mildly contrarian stance on the topic.",
	domain.ApproachPracticalTip:      "Offer one genuinely useful, specific tip.",
	domain.ApproachCuriosityGap:      "Hint at something interesting without giving it all away.",
	domain.ApproachRelatableStruggle: "Empathize with a common frustration around the topic.",
	domain.ApproachDataPoint:         "Anchor the message on one concrete number or fact.",
	domain.ApproachMythBusting:       "Gently correct a common misconception.",
	domain.ApproachBehindTheScenes:   "Share a behind-the-scenes detail or process note.",
	domain.ApproachCommunityShoutout: "Acknowledge the community or a member of it.",
	domain.ApproachTrendCommentary:   "Tie the message to something currently trending in the space.",
}

// SystemPrompt returns the system prompt for a phase.
func SystemPrompt(phase domain.Phase) string {
	return phaseSystemPrompts[phase]
}

// UserPrompt assembles the user prompt for one work item.
// Parameters:
//   - phase: onboarding phase being generated.
//   - approach: selected generation approach.
//   - brandVoice: project brand-voice sentence; may be empty.
//   - ref: work item reference (page URL, keyword, or post ID).
//   - payload: work item content extract; may be empty.
// Returns:
//   - string: assembled prompt.
func UserPrompt(phase domain.Phase, approach domain.Approach, brandVoice, ref, payload string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Reference: %s\n", ref)
	if payload != "" {
		fmt.Fprintf(&b, "Content:\n%s\n", payload)
	}
	if brandVoice != "" {
		fmt.Fprintf(&b, "Brand voice: %s\n", brandVoice)
	}
	if directive, ok := approachDirectives[approach]; ok {
		fmt.Fprintf(&b, "Style: %s\n", directive)
	}
	b.WriteString("Generate now.")

	return b.String()
}
