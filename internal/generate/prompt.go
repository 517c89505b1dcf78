package generate

import "fmt"

// Section markers delimiting each artifact in a model response.
const (
	RootStart     = "[ROOT_BUILD_START]"
	RootEnd       = "[ROOT_BUILD_END]"
	ModuleStart   = "[APP_BUILD_START]"
	ModuleEnd     = "[APP_BUILD_END]"
	SettingsStart = "[SETTINGS_START]"
	SettingsEnd   = "[SETTINGS_END]"
	WrapperStart  = "[GRADLEW_START]"
	WrapperEnd    = "[GRADLEW_END]"
)

// Markers lists every marker in response order.
var Markers = []string{
	RootStart, RootEnd,
	ModuleStart, ModuleEnd,
	SettingsStart, SettingsEnd,
	WrapperStart, WrapperEnd,
}

const promptTemplate = `You are an expert in Kotlin Multiplatform projects.
Based on all the following project files, generate the necessary build files: root build.gradle.kts, composeApp build.gradle.kts, settings.gradle.kts, and gradlew.bat.
Pay close attention to imports in .kt files and dependencies mentioned in other files.

Combined source code from all relevant project files:
---
%s
---

Your response MUST be in the following format, and nothing else:

%s
(content of root build.gradle.kts)
%s

%s
(content of composeApp/build.gradle.kts)
%s

%s
(content of settings.gradle.kts)
%s

%s
(content of gradlew.bat - Windows batch file to run gradle wrapper)
%s
`

// Prompt embeds the flattened source text in the generation instructions.
func Prompt(source string) string {
	return fmt.Sprintf(promptTemplate, source,
		RootStart, RootEnd,
		ModuleStart, ModuleEnd,
		SettingsStart, SettingsEnd,
		WrapperStart, WrapperEnd)
}
