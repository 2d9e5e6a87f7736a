package config

import "audiofx/internal/effect"

// EffectProperties builds the property set shared by the effect chain.
// Disabled effects are expressed by the presence of their *_Disabled key;
// a zero TrackDuration leaves AudioFade_TrackDuration unset so the engine
// can fill it in from the input.
func (c *Config) EffectProperties() *effect.PropertySet {
	props := effect.NewPropertySet()

	fade := c.Effects.Fade
	if !fade.Enabled {
		props.Set(effect.KeyFadeDisabled, true)
	}
	props.Set(effect.KeyFadeDuration, float32(fade.Duration))
	if fade.TrackDuration > 0 {
		props.Set(effect.KeyTrackDuration, fade.TrackDuration)
	}

	gain := c.Effects.Gain
	if !gain.Enabled {
		props.Set(effect.KeyGainDisabled, true)
	}
	props.Set(effect.KeyGainValue, float32(gain.Decibels))

	return props
}
