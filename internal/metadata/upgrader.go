package metadata

import (
	"fmt"
	"strings"

	"nestquest/internal/domain"
)

// Tier-3 document constants.
const (
	Tier3ImageTemplate = "https://gfxnestquest.s3.ap-south-1.amazonaws.com/img/tier3/%s.png"
	Tier3ImageType     = "image/png"
	Tier3Description   = "The training has paid off and the Hatchling has evolved into a much stronger Gosling. " +
		"The Gosling still emits a dangerous flame from its mouth which appears to be related to its prior Aura. " +
		"Additional training is required to evolve again."
)

// Trait names.
const (
	TraitBody  = "Body"
	TraitFlame = "Flame"
	TraitAura  = "Aura"
)

// Evolution is the flame and aura a body color evolves into.
type Evolution struct {
	Flame string
	Aura  string
}

// Evolutions maps every recognized body color.
var Evolutions = map[string]Evolution{
	"Black":  {Flame: "Plague", Aura: "Death"},
	"Blue":   {Flame: "Frost", Aura: "Water"},
	"Gold":   {Flame: "Lightning", Aura: "Life"},
	"Green":  {Flame: "Growth", Aura: "Forest"},
	"Orange": {Flame: "Molten", Aura: "Earth"},
	"Purple": {Flame: "Heart", Aura: "Love"},
	"Red":    {Flame: "Fire", Aura: "Sun"},
}

// Tier3Image returns the tier-3 image URI for a body color.
func Tier3Image(body string) string {
	return fmt.Sprintf(Tier3ImageTemplate, strings.ToLower(body))
}

// Upgrade rewrites doc in place into its tier-3 form. On error doc is unchanged.
func Upgrade(doc *domain.OffchainMetadata) error {
	body, ok := doc.FindAttribute(TraitBody)
	if !ok {
		return domain.Errorf(domain.KindMissingAttribute, "%q has no %s attribute", doc.Name, TraitBody)
	}

	evo, ok := Evolutions[body.Value]
	if !ok {
		return domain.Errorf(domain.KindUnrecognizedVariant, "%q has body %q", doc.Name, body.Value)
	}

	image := Tier3Image(body.Value)

	doc.Description = Tier3Description
	doc.Image = image
	doc.Attributes = []domain.Attribute{
		{TraitType: TraitBody, Value: body.Value},
		{TraitType: TraitFlame, Value: evo.Flame},
		{TraitType: TraitAura, Value: evo.Aura},
	}
	doc.Properties.Files = []domain.PropertiesFile{
		{URI: image, Type: Tier3ImageType},
	}
	return nil
}
