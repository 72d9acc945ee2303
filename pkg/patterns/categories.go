package patterns

import "regexp"

// Group registration, one function per category. Keyword lists are matched
// as substrings against the normalized text variants, so multi-word phrases
// also catch spacing evasion through the collapsed form.

func (r *Registry) registerViolenceGroup() {
	r.register(&Group{
		Category: CategoryViolence,
		Label:    "Contains threatening language",
		Keywords: []string{
			"kill", "die", "hurt", "harm", "threat", "threaten",
			"murder", "stab", "shoot you", "beat you", "strangle",
			"break your", "destroy you", "end you",
		},
	})
}

func (r *Registry) registerIndirectThreatGroup() {
	r.register(&Group{
		Category: CategoryIndirectThreat,
		Label:    "Contains threatening language",
		Keywords: []string{
			// exposure threats, many phrasings
			"share your photo", "share your photos", "share your pic", "share your pics",
			"post your photo", "post your photos", "post your pic", "post your pics",
			"expose you", "expose your", "leak your", "leak your photo",
			"publish your", "reveal your", "show everyone", "show your",
			"going to share", "will share", "gonna share", "i will share",
			"i'll share", "i'm going to share", "i will post", "i'll post",
			// intimidation
			"you'll regret", "you will regret", "you'll see", "you will see",
			"what will happen", "what happens next", "or else", "or you'll",
			"if you don't", "unless you", "you better", "you'd better",
		},
	})
}

func (r *Registry) registerCyberbullyingGroup() {
	r.register(&Group{
		Category: CategoryCyberbullying,
		Label:    "Cyberbullying detected",
		Keywords: []string{
			// appearance and worth insults
			"ugly", "fat", "skinny", "disgusting", "gross", "hideous",
			"stupid", "idiot", "moron", "dumb", "fool", "loser",
			"pathetic", "worthless", "useless", "trash", "garbage",
			"nobody likes you", "everyone hates you", "no one wants you",
			"you deserve", "should die", "you should", "you need to",
			// gender-based insults
			"bitch", "slut", "whore", "hoe", "thot",
			"weak", "pathetic man", "real man", "be a man",
			"women should", "men should", "because you're a",
			// emotional harm
			"nobody cares", "no one cares", "who cares", "who asked",
			"shut up", "go away", "get lost", "fuck off",
		},
	})
}

func (r *Registry) registerGBVGroup() {
	r.register(&Group{
		Category: CategoryGBV,
		Label:    "Gender-based content",
		Keywords: []string{
			// control and submission
			"women should", "men should", "because you're a woman", "because you're a man",
			"obey", "submit", "control", "belongs to", "property", "my woman", "my man",
			"you belong to", "you're mine", "you're my", "do as i say",
			"listen to me", "do what i tell you", "follow my orders",
			// gender stereotypes
			"act like a man", "be a man", "man up", "real men",
			"women belong", "women are meant to", "girls should", "boys should",
			"that's a woman's job", "that's a man's job",
			// discriminatory framing
			"inferior", "superior", "weak",
		},
	})
}

func (r *Registry) registerThreatRegexGroup() {
	r.register(&Group{
		Category:     CategoryThreatRegex,
		Label:        "Threatening language pattern detected",
		ShortCircuit: true,
		Regexes: []RegexPattern{
			{
				Regex:       regexp.MustCompile(`(?i)\b(if|unless|or else|or you'll|you better|you'd better)\b.*\b(regret|happen|see|get|find|hurt|harm)\b`),
				Description: "Threatening language pattern detected",
			},
			{
				Regex:       regexp.MustCompile(`(?i)\b(will|going to|gonna|'ll)\s+(share|post|expose|reveal|leak|publish|show)\s+(your|you)\b`),
				Description: "Threatening language pattern detected",
			},
			{
				Regex:       regexp.MustCompile(`(?i)\b(send|give|tell)\s+me\s+(or|else|otherwise|or else)\b`),
				Description: "Threatening language pattern detected",
			},
			{
				Regex:       regexp.MustCompile(`(?i)\b(look|come)\s+for\s+you\b.*\b(kill|hurt|harm)\b`),
				Description: "Threatening language pattern detected",
			},
		},
	})
}

func (r *Registry) registerStalkingGroup() {
	r.register(&Group{
		Category: CategoryStalking,
		Label:    "Stalking behavior",
		Keywords: []string{
			"find you", "find your", "look for you", "come for you",
			"track you", "track your", "where you live", "home address",
			"where are you", "where you at", "where you work", "where you study",
			"stalk", "stalking", "following you", "watching you",
			"i know where", "outside your house", "saw you today",
		},
	})
}

func (r *Registry) registerTechAbuseGroup() {
	r.register(&Group{
		Category: CategoryTechAbuse,
		Label:    "Technology-facilitated abuse",
		Keywords: []string{
			"spyware", "keylogger", "deepfake", "deep fake",
			"hacked your", "hack your account", "logged into your",
			"i have your password", "cloned your", "fake account of you",
			"fake profile of you", "read your messages",
		},
	})
}

func (r *Registry) registerDoxxingGroup() {
	r.register(&Group{
		Category: CategoryDoxxing,
		Label:    "Doxxing or leak threat",
		Keywords: []string{
			"dox", "doxx", "leak your address", "leak your number",
			"post your address", "share your address", "sextortion",
			"i have your photos", "i have your nudes", "pay or i",
			"everyone will know where",
		},
	})
}

func (r *Registry) registerSexualHarassmentGroup() {
	r.register(&Group{
		Category: CategorySexualHarassment,
		Label:    "Sexual harassment",
		Keywords: []string{
			"send nudes", "send me nudes", "sexy pic", "naked pic",
			"what are you wearing", "sexual favors", "sleep with me",
			"touch you", "show me your body",
		},
	})
}

func (r *Registry) registerCoerciveControlGroup() {
	r.register(&Group{
		Category: CategoryCoerciveControl,
		Label:    "Coercive control",
		Keywords: []string{
			"gaslight", "you're crazy", "you're imagining",
			"no one will believe you", "i control the money",
			"you can't leave", "i'll leave you", "abandon you",
			"cut you off", "you owe me", "after all i've done",
			"if you loved me",
		},
	})
}

func (r *Registry) registerIdentityAbuseGroup() {
	r.register(&Group{
		Category: CategoryIdentityAbuse,
		Label:    "Identity-targeted abuse",
		Keywords: []string{
			"out you", "tell everyone you're", "expose your secret",
			"your diagnosis", "your hiv", "medical records",
			"tell them what you are", "reveal who you really are",
		},
	})
}

func (r *Registry) registerElderAbuseGroup() {
	r.register(&Group{
		Category: CategoryElderAbuse,
		Label:    "Elder abuse",
		Keywords: []string{
			"senile", "old hag", "old fool", "too old to understand",
			"dementia", "waiting for you to die", "your pension",
			"sign over",
		},
	})
}

func (r *Registry) registerChildThreatGroup() {
	r.register(&Group{
		Category: CategoryChildThreat,
		Label:    "Child-related threat",
		Keywords: []string{
			"hurt your kids", "hurt your children", "hurt your daughter",
			"hurt your son", "i know your kids", "i know where your kids",
			"your kids go to school", "take your children away",
		},
	})
}

// Symbolic matches run against the raw text. De-obfuscation strips
// non-alphanumerics, which would erase emoji before matching.
func (r *Registry) registerSymbolicGroup() {
	r.register(&Group{
		Category: CategorySymbolic,
		Label:    "Symbolic threat",
		RawOnly:  true,
		Keywords: []string{
			"🔪", "🔫", "💀", "⚰️", "☠️", "🩸", "💣", "🪓",
		},
	})
}

func (r *Registry) registerPrivacyGroup() {
	r.register(&Group{
		Category:     CategoryPrivacy,
		Label:        "Privacy concern",
		ShortCircuit: true,
		Keywords: []string{
			"location", "gps", "tracking", "where are you", "your address",
			"phone number", "email", "real name", "where you work", "where you study",
		},
	})
}

func (r *Registry) registerMediumRiskGroup() {
	r.register(&Group{
		Category:     CategoryMediumRisk,
		Label:        "Concerning language",
		ShortCircuit: true,
		Keywords: []string{
			"harass", "abuse", "violence", "attack", "expose", "leak",
			"personal info", "private message", "dox", "embarrass you",
			"make fun of", "laugh at you",
		},
	})
}
