// Package render turns the final report into the profile README markup.
package render

import (
	"fmt"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/naka-gawa/readme-stats/internal/domain"
)

// readmeTemplate is the fixed profile card. Every field is always rendered,
// zero values included.
const readmeTemplate = `<table>
<tr>
<td valign="top">
<pre>
%s ————————————————————————————————————————————————
. OS: ........................ Windows 10, Linux, Android 14
. Uptime: .................... 2+ years (Professional Experience)
. Host: ...................... 64 Squares LLC, Pune.
. Kernel: .................... Full-Stack Software Engineer | Backend-Focused | Cloud-Native Systems
. IDE: ....................... IntelliJ IDEA 2025.2.1, VSCode 1.95.1

. Core Expertise: ............ Full-Stack Web Development, API Design, Scalable Architecture,
. Core Expertise: ............ System Design, Cloud Deployments, Performance Optimization,
. Core Expertise: ............ Agile Delivery, and End-to-End Product Development

. Languages.Programming: ..... Java, Python, JavaScript/TypeScript, C, C++
. Frontend: .................. React JS/TS, Redux, Tailwind CSS, HTML, CSS
. Backend: ................... Node.js, Express, Spring Boot, Sequelize, JPA, Hibernate, Redis, REST APIs
. Databases: ................. MySQL, PostgreSQL, NoSQL
. Cloud/DevOps: .............. AWS, Git, Linux, CI/CD Pipelines
. Other Skills: .............. Data Structures & Algorithms, Problem Solving, Debugging, System Design
. Learning: .................. Go, Rust

. Languages.Real: ............ English, Hindi, Marathi

. Hobbies.Software: .......... Software Development, Building Tools, Automation, Open Source Projects
. Hobbies.Hardware: .......... Overclocking, Undervolting

 — Open Source ——————————————————————————————————————————
. <a href="https://www.npmjs.com/package/react-canvas-img" target="_blank" rel="noopener noreferrer">react-canvas-img</a>

— Contact ——————————————————————————————————————————————
. Email.Personal: ............ <a href="mailto:neerajrp1999@gmail.com">neerajrp1999@gmail.com</a>
. Email.Work: ................ <a href="mailto:neerajrp1999@zohomail.in">neerajrp1999@zohomail.in</a>
. LinkedIn: .................. <a href="https://www.linkedin.com/in/neerajprajapati309" target="_blank" rel="noopener noreferrer">neerajprajapati309</a>
. Leetcode: .................. <a href="https://leetcode.com/neerajrp1999" target="_blank" rel="noopener noreferrer">neerajrp1999</a>

 — GitHub Stats ——————————————————————————————————————————
. Total Repos: ............... %d (Public: %d, Private: %d)
. Stars: ..................... %d
. Followers: ................. %d
. Contributions (Last Year) .. %d
. Commits: ................... %d
. Lines of Code: ............. %s (%s++, %s-- )

</pre>
</td>
</tr>
</table>
`

// BuildReadme substitutes the gathered numbers into the profile card.
// Line counts carry thousands separators; the net total is not clamped and
// renders negative when more lines were removed than added.
func BuildReadme(login string, s domain.AccountStats, t domain.CommitTally) string {
	p := message.NewPrinter(language.English)
	return fmt.Sprintf(readmeTemplate,
		login,
		s.TotalRepos, s.PublicRepos, s.PrivateRepos,
		s.Stars,
		s.Followers,
		s.Contributions,
		t.Commits,
		p.Sprintf("%d", t.NetLines()),
		p.Sprintf("%d", t.LinesAdded),
		p.Sprintf("%d", t.LinesRemoved),
	)
}

// Write overwrites path with content.
func Write(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
