package divcards

// defaultCatalog is the built-in known-card universe per game, used to seed
// an empty catalog on first run. The full list ships with the game data; a
// fresh install still needs a baseline so apply-rarities has cards to
// default.
var defaultCatalog = map[string][]string{
	"poe1": {
		"A Dab of Ink",
		"Abandoned Wealth",
		"Alluring Bounty",
		"Alone in the Darkness",
		"Assassin's Favour",
		"Boon of the First Ones",
		"Brother's Gift",
		"Brother's Stash",
		"Chaotic Disposition",
		"Council of Cats",
		"Deathly Designs",
		"Desecrated Virtue",
		"Divine Beauty",
		"Divine Justice",
		"Doryani's Epiphany",
		"Emperor's Luck",
		"Fire of Unknown Origin",
		"Gemcutter's Promise",
		"Grand Archives",
		"Her Mask",
		"House of Mirrors",
		"Humility",
		"Lachrymal Necrosis",
		"Loyalty",
		"Lucky Connections",
		"Nook's Crown",
		"Rain of Chaos",
		"Seven Years Bad Luck",
		"The Apothecary",
		"The Artist",
		"The Cacophony",
		"The Chains that Bind",
		"The Cheater",
		"The Demon",
		"The Doctor",
		"The Dragon's Heart",
		"The Eldritch Decay",
		"The Enlightened",
		"The Eternal War",
		"The Fiend",
		"The Fortunate",
		"The Gambler",
		"The Garish Power",
		"The Hermit",
		"The Hoarder",
		"The Immortal",
		"The Innocent",
		"The Insane Cat",
		"The Last One Standing",
		"The Lover",
		"The Magma Crab",
		"The Nurse",
		"The Patient",
		"The Polymath",
		"The Price of Devotion",
		"The Saint's Treasure",
		"The Scarred Meadow",
		"The Scholar",
		"The Sephirot",
		"The Survivalist",
		"The Union",
		"The Void",
		"The Wretched",
		"Unrequited Love",
		"Vinia's Token",
		"Wealth and Power",
	},
	"poe2": {
		"Ambitious Obsession",
		"Desperate Crusade",
		"Fool's Gold",
		"Scythe of the Reaper",
		"Succor of the Sister",
		"The Amphitheatre",
		"The Bargain",
		"The Celebration",
		"The Fox in the Brambles",
		"The Gemcutter",
		"The Hoarder",
		"The Instability",
		"The Lord of Horrors",
		"The Mind's Eyes",
		"The Peaceful Moment",
		"The Wedding Gift",
	},
}
