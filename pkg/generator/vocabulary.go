package generator

var (
	spamSubjects = []string{
		"URGENT!!! FREE MONEY!!!",
		"You have won $1,000,000!!!",
		"ACT NOW - Limited time offer!",
		"Get rich quick - GUARANTEED!",
		"FREE Viagra - No prescription needed",
		"Lose 50 pounds in 10 days!",
		"Work from home - Make $5000/week",
		"CONGRATULATIONS - You're our winner!",
		"Click here for FREE gift cards",
		"Urgent: Your account will be closed",
		"Amazing investment opportunity",
		"Exclusive casino bonus inside",
	}

	hamSubjects = []string{
		"Meeting tomorrow at 2 PM",
		"Quarterly report attached",
		"Project update - Phase 2 complete",
		"Happy birthday!",
		"Weekend plans?",
		"Conference call notes",
		"Invoice #12345",
		"Welcome to our team",
		"System maintenance notice",
		"Re: Budget approval",
		"Lunch invitation",
		"Code review for the release branch",
	}

	spamBodies = []string{
		"Congratulations! You have been selected to receive FREE MONEY! No risk involved! GUARANTEED income! Act now before this offer expires! Click here: %s",
		"URGENT! Your account will be suspended unless you verify your password immediately! Click here to avoid suspension: %s",
		"Make money fast with our proven system! Thousands are already earning $10,000 per week! Join now: %s",
		"You have won our lottery! Claim your $1,000,000 prize now! Send your bank details to claim: %s",
		"Lose weight fast with our miracle pill! No diet or exercise needed! Order now: %s",
		"Get Viagra without prescription! Best prices guaranteed! Free shipping worldwide! Order: %s",
		"Exclusive casino bonus! Double your deposit and win big tonight! Claim your free spins: %s",
	}

	hamBodies = []string{
		"Hi %s,\n\nI wanted to remind you about our meeting tomorrow at 2 PM in the conference room.\nWe'll be discussing the quarterly reports and planning for next quarter.\n\nPlease let me know if you need to reschedule.\n\nBest regards,\n%s",
		"Hello %s,\n\nPlease find attached the quarterly report for your review. Revenue is up fifteen percent overall.\n\nLet me know if you have any questions.\n\nThanks,\n%s",
		"Hi %s,\n\nQuick update on the project. Phase 2 has been completed and we're on track for the deadline.\nNext steps are reviewing deliverables and scheduling the team meeting.\n\nBest,\n%s",
		"Dear %s,\n\nWe're planning a team lunch this Friday at 12:30. Please let me know if you can make it.\n\nRegards,\n%s",
		"Hi %s,\n\nI left a few comments on the pull request. The tests pass locally but the migration needs another look before we merge.\n\nCheers,\n%s",
	}

	spamDomains = []string{
		"get-rich-quick.com", "free-money.net", "prize-claims.biz", "cheap-pharma.net",
		"lottery-winners.org", "secure-verify-account.com", "bonus-casino.io", "miracle-diet.shop",
	}

	spamPaths = []string{"click-here", "claim", "verify", "order-now", "win"}

	spamUsers = []string{"noreply", "admin", "support", "winner", "lottery", "offer", "deals"}

	spamKeywords = []string{
		"free money", "get rich", "guaranteed income", "no risk", "act now",
		"limited time", "urgent", "you have won", "lottery", "click here",
	}

	hamDomains = []string{
		"gmail.com", "outlook.com", "company.com", "university.edu", "startup.io",
		"tech-firm.com", "consulting.biz", "healthcare.org",
	}

	recipientUsers   = []string{"user", "customer", "employee", "member", "team"}
	recipientDomains = []string{"example.com", "example.org", "example.net"}

	names = []string{
		"John Smith", "Jane Doe", "Mike Johnson", "Sarah Wilson", "David Brown",
		"Lisa Garcia", "Robert Miller", "Emily Davis", "Michael Anderson", "Jennifer Taylor",
		"Amanda Thomas", "Matthew Jackson", "Jessica White", "Daniel Harris",
	}
)
