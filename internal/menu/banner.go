package menu

const banner = `    ___  ________    ___   _____    __  ___   __________________________
   /   |/_  __/ /   /   | / ___/   / / / / | / /  _/ ____/  _/ ____/ __ \
  / /| | / / / /   / /| | \__ \   / / / /  |/ // // /_   / // __/ / / / /
 / ___ |/ / / /___/ ___ |___/ /  / /_/ / /|  // // __/ _/ // /___/ /_/ /
/_/ _|_/_/_/_____/_/_ |_/____/  _\____/_/ |_/___/_/_  /___/_____/_____/ __________
   / __ \/ ____/ ___// / / /  |/  / ____/  / __ )/ / / /  _/ /   / __ \/ ____/ __ \
  / /_/ / __/  \__ \/ / / / /|_/ / __/    / __  / / / // // /   / / / / __/ / /_/ /
 / _, _/ /___ ___/ / /_/ / /  / / /___   / /_/ / /_/ // // /___/ /_/ / /___/ _, _/
/_/ |_/_____//____/\____/_/  /_/_____/  /_____/\____/___/_____/_____/_____/_/ |_|`
