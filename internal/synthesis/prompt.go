package synthesis

import "fmt"

func buildGenerationPrompt(prompt string, durationLimit int) string {
	return fmt.Sprintf(`Create a complete Manim script that explains: %s

CRITICAL REQUIREMENTS:
- Use the latest Manim syntax (from manim import *)
- Import numpy as np if you need vector operations
- Create a class that inherits from Scene (voiceover will be added later)
- NEVER use VGroup(*self.mobjects) - this causes errors
- Instead use Group() or create specific groups of objects
- Keep the animation between 10-%d seconds
- Make sure all imports are correct
- End with self.wait(2) for a clean finish
- Use Text() instead of MathTex for better compatibility
- Use simple, reliable Manim objects

VECTOR OPERATIONS:
- NEVER use .normalize() on numpy arrays - this method doesn't exist
- Use np.linalg.norm() for vector normalization: vector / np.linalg.norm(vector)
- Always complete your lines of code - don't leave hanging expressions

SAFE OBJECT TYPES TO USE:
- Text() for all text
- Circle(), Rectangle(), Square() for shapes
- Line(), Arrow() for connections
- Group() for grouping objects (NOT VGroup(*self.mobjects))
- NumberPlane(), Axes() for coordinate systems

ANIMATION RULES:
- Use Create() ONLY on individual objects (Circle, Rectangle, Line, Text, etc.)
- NEVER use Create(group), Write(group), or FadeIn(group) - this causes "NotImplementedError"
- For groups, animate each object separately: self.play(*[Create(obj) for obj in group])

SAFE COLORS TO USE (ONLY THESE):
- RED, GREEN, BLUE, YELLOW, ORANGE, PURPLE, PINK
- WHITE, BLACK, GRAY, GREY, LIGHT_GRAY, DARK_GRAY
- TEAL, MAROON, GOLD
- For custom colors use: "#FF5733" or "#3498DB" (hex format)

Return ONLY the Python code without explanations or markdown formatting.`, prompt, durationLimit)
}

func buildRepairPrompt(script, reason string) string {
	return fmt.Sprintf(`Review this Manim script and fix any issues to make it executable. Return ONLY the corrected Python code.

VALIDATION FAILURE TO FIX: %s

CRITICAL FIXES NEEDED:
- Ensure all imports are correct (from manim import *)
- Fix any syntax errors
- Make sure the class inherits from Scene properly
- Fix any undefined variables or functions
- Ensure all colors used are valid Manim colors
- CRITICAL: Fix animation on groups - NEVER use Create(group), Write(group), or FadeIn(group)
- For groups use: self.play(*[Create(obj) for obj in group]) or animate each member individually
- Make sure all objects are properly defined before use
- Ensure proper indentation
- IMPORTANT: Fix vector normalization - use np.linalg.norm() instead of .normalize()
- Import numpy as np if needed for vector operations
- Complete any incomplete lines of code

SCRIPT TO FIX:
%s

Return ONLY the fixed Python code, no explanations or markdown.`, reason, fencePython(script))
}

func buildVoiceoverPrompt(script, voice string) string {
	return fmt.Sprintf(`Transform this Manim script to use voiceover functionality.

CRITICAL REQUIREMENTS FOR VOICEOVER INTEGRATION:
1. Change the class to inherit from VoiceoverScene instead of Scene
2. Import: from manim_voiceover import VoiceoverScene
3. Import: from manim_voiceover.services.azure import AzureService
4. Add speech service initialization in construct method:
   self.set_speech_service(AzureService(voice="%s", style="friendly"))
5. Wrap animation sequences with voiceover context managers
6. Use this pattern: with self.voiceover(text="Narration text here") as tracker:
7. Sync animations with voiceover duration using tracker.duration
8. Write natural, educational narration that explains what's happening
9. Keep the same visual content and animations, just add voiceover

NARRATION GUIDELINES:
- Write clear, educational narration
- Explain concepts as they appear visually
- Use natural, conversational language
- Match narration length to animation duration

EXISTING SCRIPT TO TRANSFORM:
%s

Return ONLY the complete transformed Python code with voiceover integration, no explanations or markdown.`, voice, fencePython(script))
}

func fencePython(script string) string {
	return "```python\n" + script + "\n```"
}
